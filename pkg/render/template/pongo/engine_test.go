package pongo

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
)

func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	files := fstest.MapFS{
		"page.html":    {Data: []byte(`<h1>{{ title }}</h1>{% include "partial.html" %}`)},
		"partial.html": {Data: []byte(`<p>{{ body|trim }}</p>`)},
		"style.html":   {Data: []byte(`<div style="{{ vars|cssvars }}"></div>`)},
	}
	engine, err := New(append([]Option{WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine
}

func TestRenderTemplateEscapesAndIncludes(t *testing.T) {
	t.Parallel()

	engine := testEngine(t)
	var out bytes.Buffer
	got, err := engine.RenderTemplate("page", map[string]any{"title": "<b>Hi</b>", "body": "  text  "}, &out)
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	want := `<h1>&lt;b&gt;Hi&lt;/b&gt;</h1><p>text</p>`
	if got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if out.String() != want {
		t.Fatalf("writer did not receive output: %q", out.String())
	}
}

func TestRenderTemplateFromStruct(t *testing.T) {
	t.Parallel()

	type view struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	got, err := testEngine(t).RenderTemplate("page.html", view{Title: "T", Body: "B"}, nil)
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	if got != "<h1>T</h1><p>B</p>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCSSVarsFilter(t *testing.T) {
	t.Parallel()

	got, err := testEngine(t).RenderTemplate("style", map[string]any{
		"vars": map[string]string{"--brand": "#123456", "--accent": "red; }</style>"},
	}, nil)
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	want := `<div style="--accent: red /style; --brand: #123456;"></div>`
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestGlobalsAndInlineTemplates(t *testing.T) {
	t.Parallel()

	engine := testEngine(t, WithGlobals(map[string]any{"site": "Builder"}))
	got, err := engine.RenderString(`{{ site }}/{{ page }}`, map[string]any{"page": "home"})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if got != "Builder/home" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegisterFilter(t *testing.T) {
	t.Parallel()

	engine := testEngine(t)
	name := fmt.Sprintf("shout_%p", engine)
	if err := engine.RegisterFilter(name, func(in, _ any) (any, error) {
		return strings.ToUpper(fmt.Sprint(in)) + "!", nil
	}); err != nil {
		t.Fatalf("RegisterFilter: %v", err)
	}
	if err := engine.RegisterFilter(name, func(in, _ any) (any, error) { return in, nil }); err == nil {
		t.Fatal("expected duplicate filter registration to fail")
	}
	got, err := engine.RenderString(`{{ word|`+name+` }}`, map[string]any{"word": "hey"})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if got != "HEY!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNewRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := New(); err == nil {
		t.Fatal("expected error without template source")
	}
}
