package openapi

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadEmbeddedDocument(t *testing.T) {
	t.Parallel()

	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Info == nil || doc.Info.Title != "UI Builder API" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}

	var ids []string
	for _, op := range Operations(doc) {
		ids = append(ids, op.Method+" "+op.Path+" "+op.ID)
	}
	want := []string{
		"POST /api/lint lintSchema",
		"GET /api/openapi.json getOpenAPI",
		"GET /api/schemas listSchemas",
		"POST /api/schemas createSchema",
		"DELETE /api/schemas/{id} deleteSchema",
		"GET /api/schemas/{id} getSchema",
		"PUT /api/schemas/{id} updateSchema",
		"POST /api/schemas/{id}/forms/{componentID}/submit submitForm",
		"GET /api/schemas/{id}/render renderSchema",
		"GET /api/templates listTemplates",
		"GET /api/templates/{id} getTemplate",
		"POST /api/validate validateSchema",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONEncodesDocument(t *testing.T) {
	t.Parallel()

	raw, err := JSON(context.Background())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["openapi"] != "3.0.3" {
		t.Fatalf("unexpected openapi version %v", payload["openapi"])
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	if _, err := Parse(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
	_, err := Parse(context.Background(), []byte(`{"openapi":"3.0.3","paths":{}}`))
	if err == nil || !strings.Contains(err.Error(), "openapi: validate") {
		t.Fatalf("expected validation error for missing info, got %v", err)
	}

	doc, err := Parse(context.Background(), []byte(`
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /ping:
    get:
      responses:
        "200": {description: ok}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops := Operations(doc)
	if len(ops) != 1 || ops[0].ID != "get:/ping" {
		t.Fatalf("unexpected operations %+v", ops)
	}
}
