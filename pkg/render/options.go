package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request presentation data. Renderers ignore the
// parts they have no use for.
type RenderOptions struct {
	// Title is the document title for renderers that emit a full page.
	Title string
	// Theme supplies tokens, partial overrides and asset URLs resolved from a
	// go-theme selection.
	Theme *theme.RendererConfig
	// Hidden lists inputs emitted inside every rendered form, such as a CSRF
	// token.
	Hidden []HiddenField
	// FormHidden returns extra hidden inputs for one form component. They
	// win over Hidden on a name clash.
	FormHidden func(componentID string) []HiddenField
	// ActionURL returns the submit target for a form component. Forms post to
	// the current URL when it is nil.
	ActionURL func(componentID string) string
	// Forms overlays live form state (values, errors, outcome) by component id.
	Forms map[string]FormSnapshot
}

// PageForms snapshots every form on the page, keyed by component id, for use
// as RenderOptions.Forms.
func PageForms(page *Page) map[string]FormSnapshot {
	if page == nil || len(page.forms) == 0 {
		return nil
	}
	out := make(map[string]FormSnapshot, len(page.forms))
	for _, f := range page.forms {
		if _, seen := out[f.ID()]; !seen {
			out[f.ID()] = f.Snapshot()
		}
	}
	return out
}
