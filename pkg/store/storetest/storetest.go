// Package storetest runs the same behavioural checks against every
// store.Repository implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/store"
)

// Clock is a manually advanced time source.
type Clock struct {
	t time.Time
}

// NewClock starts a clock at a fixed UTC instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Sequence returns an id generator yielding rec-1, rec-2, ...
func Sequence() store.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}
}

// Factory builds an empty repository wired to clock and ids.
type Factory func(t *testing.T, clock *Clock, ids store.IDFunc) store.Repository

func sample(title string) schema.UISchema {
	return schema.UISchema{Components: []schema.Component{{
		Type: schema.TypeText,
		ID:   "title",
		Text: &schema.TextProps{Variant: schema.VariantH1, Content: title},
	}}}
}

// Run exercises CRUD, ordering and not-found behaviour.
func Run(t *testing.T, factory Factory) {
	t.Run("create and get", func(t *testing.T) {
		clock := NewClock()
		repo := factory(t, clock, Sequence())
		ctx := context.Background()

		desc := "first"
		created, err := repo.Create(ctx, store.NewRecord{Name: "One", Description: &desc, Content: sample("Hello")})
		require.NoError(t, err)
		assert.Equal(t, "rec-1", created.ID)
		assert.True(t, created.CreatedAt.Equal(clock.Now()))
		assert.True(t, created.UpdatedAt.Equal(clock.Now()))

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "One", got.Name)
		require.NotNil(t, got.Description)
		assert.Equal(t, "first", *got.Description)
		require.Len(t, got.Content.Components, 1)
		assert.Equal(t, "Hello", got.Content.Components[0].Text.Content)

		byName, err := repo.GetByName(ctx, "One")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("missing records", func(t *testing.T) {
		repo := factory(t, NewClock(), Sequence())
		ctx := context.Background()

		_, err := repo.Get(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = repo.GetByName(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = repo.Update(ctx, "nope", store.Patch{})
		assert.ErrorIs(t, err, store.ErrNotFound)

		deleted, err := repo.Delete(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("name required", func(t *testing.T) {
		repo := factory(t, NewClock(), Sequence())
		_, err := repo.Create(context.Background(), store.NewRecord{Name: "  "})
		assert.ErrorIs(t, err, store.ErrInvalidRecord)
	})

	t.Run("update is partial and bumps updatedAt", func(t *testing.T) {
		clock := NewClock()
		repo := factory(t, clock, Sequence())
		ctx := context.Background()

		created, err := repo.Create(ctx, store.NewRecord{Name: "One", Content: sample("Hello")})
		require.NoError(t, err)
		assert.Nil(t, created.Description)

		clock.Advance(time.Minute)
		name := "Renamed"
		updated, err := repo.Update(ctx, created.ID, store.Patch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "Hello", updated.Content.Components[0].Text.Content)
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		assert.True(t, updated.UpdatedAt.Equal(clock.Now()))

		content := sample("Changed")
		updated, err = repo.Update(ctx, created.ID, store.Patch{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "Changed", updated.Content.Components[0].Text.Content)

		blank := ""
		_, err = repo.Update(ctx, created.ID, store.Patch{Name: &blank})
		assert.ErrorIs(t, err, store.ErrInvalidRecord)
	})

	t.Run("list orders by updatedAt descending", func(t *testing.T) {
		clock := NewClock()
		repo := factory(t, clock, Sequence())
		ctx := context.Background()

		for _, name := range []string{"A", "B", "C"} {
			_, err := repo.Create(ctx, store.NewRecord{Name: name, Content: sample(name)})
			require.NoError(t, err)
			clock.Advance(time.Second)
		}
		name := "A2"
		_, err := repo.Update(ctx, "rec-1", store.Patch{Name: &name})
		require.NoError(t, err)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		var names []string
		for _, rec := range list {
			names = append(names, rec.Name)
		}
		assert.Equal(t, []string{"A2", "C", "B"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		repo := factory(t, NewClock(), Sequence())
		ctx := context.Background()

		created, err := repo.Create(ctx, store.NewRecord{Name: "Gone"})
		require.NoError(t, err)
		assert.NotNil(t, created.Content.Components)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("seed is idempotent", func(t *testing.T) {
		repo := factory(t, NewClock(), Sequence())
		ctx := context.Background()

		n, err := store.Seed(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = store.Seed(ctx, repo)
		require.NoError(t, err)
		assert.Zero(t, n)

		rec, err := repo.GetByName(ctx, "Contact Form")
		require.NoError(t, err)
		require.NotNil(t, rec.Description)
		assert.Equal(t, "Basic contact form with validation", *rec.Description)
		assert.Equal(t, schema.TypeForm, rec.Content.Components[0].Type)
	})
}
