package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uibuilder/internal/log"
	"github.com/goliatone/go-uibuilder/pkg/openapi"
	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/renderers/html"
	"github.com/goliatone/go-uibuilder/pkg/renderers/jsontree"
	"github.com/goliatone/go-uibuilder/pkg/store"
	"github.com/goliatone/go-uibuilder/pkg/store/storetest"
	"github.com/goliatone/go-uibuilder/pkg/templates"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T, seed bool) http.Handler {
	t.Helper()

	repo := store.NewMemory(store.WithIDFunc(storetest.Sequence()), store.WithClock(storetest.NewClock().Now))
	if seed {
		if _, err := store.Seed(context.Background(), repo); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	catalog, err := templates.Builtin()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	htmlRenderer, err := html.New()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(htmlRenderer)
	renderers.MustRegister(jsontree.New())

	return Wire(App{
		Store:      repo,
		Templates:  catalog,
		Dispatcher: render.NewDispatcher(),
		Renderers:  renderers,
	})
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRoutesMatchOpenAPIDocument(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Load(context.Background())
	if err != nil {
		t.Fatalf("openapi: %v", err)
	}
	var want []string
	for _, op := range openapi.Operations(doc) {
		want = append(want, op.Method+" "+op.Path)
	}
	sort.Strings(want)

	var got []string
	routes := newTestApp(t, false).(chi.Routes)
	err = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got = append(got, method+" "+route)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(got)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaCRUD(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, false)

	rec := do(t, h, http.MethodPost, "/api/schemas", "application/json",
		`{"name":"Hello","description":"greeting","content":{"components":[{"type":"text","id":"t","props":{"variant":"h1","content":"Hi"}}]}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	created := decode[map[string]any](t, rec)
	if created["id"] != "rec-1" || created["name"] != "Hello" || created["description"] != "greeting" {
		t.Fatalf("unexpected created record %v", created)
	}

	rec = do(t, h, http.MethodPut, "/api/schemas/rec-1", "application/json", `{"name":"Renamed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	updated := decode[map[string]any](t, rec)
	content := updated["content"].(map[string]any)["components"].([]any)
	if updated["name"] != "Renamed" || len(content) != 1 {
		t.Fatalf("unexpected updated record %v", updated)
	}

	rec = do(t, h, http.MethodGet, "/api/schemas", "", "")
	list := decode[[]map[string]any](t, rec)
	if len(list) != 1 || list[0]["name"] != "Renamed" {
		t.Fatalf("unexpected list %v", list)
	}

	rec = do(t, h, http.MethodDelete, "/api/schemas/rec-1", "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = do(t, h, method, "/api/schemas/rec-1", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s after delete: expected 404, got %d", method, rec.Code)
		}
		if got := decode[ErrorResponse](t, rec); got.Message != "Schema not found" {
			t.Fatalf("unexpected 404 body %+v", got)
		}
	}

	rec = do(t, h, http.MethodPut, "/api/schemas/missing", "application/json", `{"name":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", rec.Code)
	}
}

func TestCreateSchemaRejectsInvalidBodies(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, false)

	cases := []struct {
		name string
		body string
		want ErrorResponse
	}{
		{
			name: "missing name",
			body: `{"content":{"components":[]}}`,
			want: ErrorResponse{Message: "Required", Path: "name"},
		},
		{
			name: "bad variant",
			body: `{"name":"x","content":{"components":[{"type":"text","id":"t","props":{"variant":"h7","content":"Hi"}}]}}`,
			want: ErrorResponse{
				Message:  "Invalid enum value. Expected 'h1' | 'h2' | 'h3' | 'h4' | 'h5' | 'h6' | 'p' | 'span', received 'h7'",
				Path:     "content.components.0.props.variant",
				Location: &render.IssueLocation{Index: 0, ComponentID: "t", Prop: "variant"},
			},
		},
		{
			name: "unknown type",
			body: `{"name":"x","content":{"components":[{"type":"video","id":"v","props":{}}]}}`,
			want: ErrorResponse{
				Message:  "Invalid input: expected type to be one of 'form' | 'text' | 'image'",
				Path:     "content.components.0",
				Location: &render.IssueLocation{Index: 0, ComponentID: "v"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/schemas", "application/json", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
			if diff := cmp.Diff(tc.want, decode[ErrorResponse](t, rec)); diff != "" {
				t.Fatalf("error body mismatch (-want +got):\n%s", diff)
			}
		})
	}

	rec := do(t, h, http.MethodPost, "/api/schemas", "application/json", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestValidateAndLint(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, false)

	rec := do(t, h, http.MethodPost, "/api/validate", "application/yaml", "components:\n  - type: image\n    id: i\n    props:\n      src: /a.png\n      alt: A\n")
	if got := decode[map[string]any](t, rec); got["valid"] != true {
		t.Fatalf("expected valid yaml document, got %v", got)
	}

	rec = do(t, h, http.MethodPost, "/api/validate", "application/json", `{"components":[{"type":"image","id":"i","props":{"src":"/a.png"}}]}`)
	got := decode[map[string]any](t, rec)
	if got["valid"] != false || got["path"] != "components.0.props.alt" || got["message"] != "Required" {
		t.Fatalf("unexpected validation result %v", got)
	}

	rec = do(t, h, http.MethodPost, "/api/lint", "application/json", `{"components":[{"type":"text","id":"t","props":{"variant":"h9"}}]}`)
	lint := decode[map[string]any](t, rec)
	issues, _ := lint["issues"].([]any)
	if lint["valid"] != false || len(issues) == 0 {
		t.Fatalf("expected lint issues, got %v", lint)
	}
}

func TestTemplateRoutes(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, false)

	list := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/api/templates", "", ""))
	if len(list) != 3 || list[0]["id"] != "contact-form" {
		t.Fatalf("unexpected templates %v", list)
	}

	rec := do(t, h, http.MethodGet, "/api/templates/registration", "", "")
	if tpl := decode[map[string]any](t, rec); tpl["name"] != "User Registration" {
		t.Fatalf("unexpected template %v", tpl)
	}

	if rec := do(t, h, http.MethodGet, "/api/templates/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRenderSchema(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, true)

	rec := do(t, h, http.MethodGet, "/api/schemas/rec-1/render", "", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html page, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	for _, want := range []string{
		`action="/api/schemas/rec-1/forms/contact-form/submit"`,
		`name="_schema" value="rec-1"`,
		`name="_component" value="contact-form"`,
		"<title>Contact Form</title>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in page:\n%s", want, body)
		}
	}

	rec = do(t, h, http.MethodGet, "/api/schemas/rec-2/render?renderer=json", "", "")
	doc := decode[jsontree.Document](t, rec)
	if doc.Title != "Landing Page" || len(doc.Nodes) != 3 || doc.Nodes[0].Element != "h1" {
		t.Fatalf("unexpected json rendering %+v", doc)
	}

	if rec := do(t, h, http.MethodGet, "/api/schemas/rec-1/render?renderer=pdf", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown renderer: expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/schemas/nope/render", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing schema: expected 404, got %d", rec.Code)
	}
}

func TestSubmitFormJSON(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, true)
	target := "/api/schemas/rec-1/forms/contact-form/submit"

	rec := do(t, h, http.MethodPost, target, "application/json", `{"fullName":"Ada","email":"not-an-email"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}
	want := map[string]string{
		"email":   "Please enter a valid email address",
		"message": "Message is required",
	}
	if diff := cmp.Diff(want, decode[SubmitResponse](t, rec).Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodPost, target, "application/json",
		`{"fullName":"Ada","email":"ada@example.com","message":"Hello","_schema":"rec-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	outcome := decode[map[string]map[string]any](t, rec)["outcome"]
	if outcome["kind"] != "success" || outcome["message"] != "Message sent successfully!" {
		t.Fatalf("unexpected outcome %v", outcome)
	}

	rec = do(t, h, http.MethodPost, target, "application/json", `{"nickname":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/schemas/rec-1/forms/nope/submit", "application/json", `{}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown form: expected 404, got %d", rec.Code)
	}
}

func TestSubmitFormHTMLPost(t *testing.T) {
	t.Parallel()
	h := newTestApp(t, true)
	target := "/api/schemas/rec-1/forms/contact-form/submit"

	form := url.Values{"_schema": {"rec-1"}, "_component": {"contact-form"}, "fullName": {"Ada"}, "email": {""}, "message": {""}}
	rec := do(t, h, http.MethodPost, target, "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Email Address is required", `value="Ada"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in page:\n%s", want, body)
		}
	}

	form.Set("email", "ada@example.com")
	form.Set("message", "Hello there")
	rec = do(t, h, http.MethodPost, target, "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Message sent successfully!") {
		t.Fatalf("expected success page, got %d:\n%s", rec.Code, rec.Body)
	}
}

func TestOpenAPIRoute(t *testing.T) {
	t.Parallel()
	rec := do(t, newTestApp(t, false), http.MethodGet, "/api/openapi.json", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if doc := decode[map[string]any](t, rec); doc["openapi"] != "3.0.3" {
		t.Fatalf("unexpected document %v", doc)
	}
}
