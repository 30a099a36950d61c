// Package store persists named UI schemas.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

var (
	// ErrNotFound is returned when no record matches the requested id.
	ErrNotFound = errors.New("store: record not found")
	// ErrInvalidRecord is returned when a record is missing its name.
	ErrInvalidRecord = errors.New("store: invalid record")
)

// Repository is the storage seam used by the HTTP API and the CLI.
type Repository interface {
	// List returns every record, most recently updated first.
	List(ctx context.Context) ([]schema.Record, error)
	Get(ctx context.Context, id string) (schema.Record, error)
	// GetByName returns the first record with the given name.
	GetByName(ctx context.Context, name string) (schema.Record, error)
	Create(ctx context.Context, rec NewRecord) (schema.Record, error)
	// Update applies the non-nil fields of patch and bumps UpdatedAt.
	Update(ctx context.Context, id string, patch Patch) (schema.Record, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// NewRecord is the caller-supplied part of a record.
type NewRecord struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Content     schema.UISchema `json:"content"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Content     *schema.UISchema `json:"content,omitempty"`
}

// Validate checks the fields every record must carry.
func (n NewRecord) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	return nil
}

// Validate checks that a patch does not blank the record name.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	return nil
}

// Apply returns rec with the patch applied and UpdatedAt set to now.
func (p Patch) Apply(rec schema.Record, now time.Time) schema.Record {
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.Description != nil {
		desc := *p.Description
		rec.Description = &desc
	}
	if p.Content != nil {
		rec.Content = *p.Content
	}
	rec.UpdatedAt = now
	return rec
}

// IDFunc produces record ids.
type IDFunc func() string

// NewID returns a random uuid string.
func NewID() string {
	return uuid.NewString()
}

// Build turns a NewRecord into a full record stamped at now.
func Build(id string, rec NewRecord, now time.Time) schema.Record {
	out := schema.Record{
		ID:        id,
		Name:      rec.Name,
		Content:   rec.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rec.Description != nil {
		desc := *rec.Description
		out.Description = &desc
	}
	if out.Content.Components == nil {
		out.Content.Components = []schema.Component{}
	}
	return out
}
