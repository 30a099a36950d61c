package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uibuilder/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, *render.Page, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := render.NewRegistry()
	reg.MustRegister(namedRenderer("json"))
	reg.MustRegister(namedRenderer("html"))

	if err := reg.Register(namedRenderer("html")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := reg.Register(namedRenderer("")); err == nil {
		t.Fatal("expected empty name to fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatal("expected nil renderer to fail")
	}

	if diff := cmp.Diff([]string{"html", "json"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("json") || reg.Has("tui") {
		t.Fatal("Has reported the wrong membership")
	}
	if _, err := reg.Get("tui"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if reg.MustGet("html").Name() != "html" {
		t.Fatal("MustGet returned the wrong renderer")
	}
}
