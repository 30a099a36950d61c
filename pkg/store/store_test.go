package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

func TestBuildCopiesDescription(t *testing.T) {
	t.Parallel()

	desc := "original"
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := Build("id-1", NewRecord{Name: "N", Description: &desc}, now)
	desc = "changed"

	require.NotNil(t, rec.Description)
	assert.Equal(t, "original", *rec.Description)
	assert.Equal(t, []schema.Component{}, rec.Content.Components)
	assert.Equal(t, now, rec.CreatedAt)
}

func TestSortByUpdatedBreaksTies(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []schema.Record{
		{ID: "b", Name: "Same", UpdatedAt: now},
		{ID: "a", Name: "Same", UpdatedAt: now},
		{ID: "c", Name: "Alpha", UpdatedAt: now},
		{ID: "d", Name: "Newest", UpdatedAt: now.Add(time.Hour)},
	}
	SortByUpdated(records)

	var ids []string
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"d", "c", "a", "b"}, ids)
}

func TestNewIDIsUUID(t *testing.T) {
	t.Parallel()

	id := NewID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewID())
}
