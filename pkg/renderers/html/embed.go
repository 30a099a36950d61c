package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html templates/components/*.html
var embeddedTemplates embed.FS

// TemplatesFS returns the built-in template bundle rooted at its top level.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
