// Package templates holds the built-in page templates and the records a fresh
// store is seeded with.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/validation"
)

//go:embed catalog/*.yaml seeds/*.yaml
var embedded embed.FS

// Template is a named starting point for a page.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      schema.UISchema `json:"content"`
}

// Catalog is a read-only set of templates keyed by id.
type Catalog struct {
	byID  map[string]Template
	order []string
}

// LoadFS reads every .json, .yaml and .yml file in fsys. Each file holds one
// template whose content must pass the structural validator. Templates
// without an id take the file name without its extension.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Template)}
	if fsys == nil {
		return c, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTemplateFile(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", p, err)
		}
		tpl, err := decodeTemplate(data, p)
		if err != nil {
			return err
		}
		if _, exists := c.byID[tpl.ID]; exists {
			return fmt.Errorf("templates: duplicate template %q (file %s)", tpl.ID, p)
		}
		c.byID[tpl.ID] = tpl
		c.order = append(c.order, tpl.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(c.order)
	return c, nil
}

func decodeTemplate(data []byte, source string) (Template, error) {
	value, err := schema.Parse(data)
	if err != nil {
		return Template{}, fmt.Errorf("templates: %s: %w", source, err)
	}
	doc, ok := value.(map[string]any)
	if !ok {
		return Template{}, fmt.Errorf("templates: %s: expected an object", source)
	}

	tpl := Template{
		ID:          stringField(doc, "id"),
		Name:        stringField(doc, "name"),
		Description: stringField(doc, "description"),
	}
	if tpl.ID == "" {
		base := path.Base(source)
		tpl.ID = strings.TrimSuffix(base, path.Ext(base))
	}
	if tpl.Name == "" {
		tpl.Name = tpl.ID
	}

	result := validation.Validate(doc["content"])
	if err := result.Err(); err != nil {
		return Template{}, fmt.Errorf("templates: %s: content: %w", source, err)
	}
	tpl.Schema, err = schema.Decode(doc["content"])
	if err != nil {
		return Template{}, fmt.Errorf("templates: %s: %w", source, err)
	}
	return tpl, nil
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return strings.TrimSpace(s)
}

func isTemplateFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (Template, bool) {
	if c == nil {
		return Template{}, false
	}
	tpl, ok := c.byID[id]
	return tpl, ok
}

// List returns the templates sorted by id.
func (c *Catalog) List() []Template {
	if c == nil {
		return nil
	}
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len reports the number of templates.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Builtin returns the catalogue embedded in the binary.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		sub, err := fs.Sub(embedded, "catalog")
		if err != nil {
			builtinErr = err
			return
		}
		builtin, builtinErr = LoadFS(sub)
	})
	return builtin, builtinErr
}

// Seeds returns the records a new store starts with, in a stable order.
func Seeds() ([]Template, error) {
	sub, err := fs.Sub(embedded, "seeds")
	if err != nil {
		return nil, err
	}
	c, err := LoadFS(sub)
	if err != nil {
		return nil, err
	}
	return c.List(), nil
}
