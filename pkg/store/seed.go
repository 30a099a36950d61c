package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-uibuilder/pkg/templates"
)

// Seed creates one record per built-in seed whose name is not already taken.
// It returns the number of records created.
func Seed(ctx context.Context, repo Repository) (int, error) {
	seeds, err := templates.Seeds()
	if err != nil {
		return 0, fmt.Errorf("store: load seeds: %w", err)
	}
	created := 0
	for _, tpl := range seeds {
		_, err := repo.GetByName(ctx, tpl.Name)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, ErrNotFound):
			return created, err
		}
		rec := NewRecord{Name: tpl.Name, Content: tpl.Schema}
		if tpl.Description != "" {
			desc := tpl.Description
			rec.Description = &desc
		}
		if _, err := repo.Create(ctx, rec); err != nil {
			return created, fmt.Errorf("store: seed %q: %w", tpl.Name, err)
		}
		created++
	}
	return created, nil
}
