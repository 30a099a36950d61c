package render

import "context"

// Renderer serialises a mounted page (HTML, JSON, terminal output).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page *Page, options RenderOptions) ([]byte, error)
}
