package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uibuilder/pkg/store"
	"github.com/goliatone/go-uibuilder/pkg/store/storetest"
)

func TestSQLiteRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T, clock *storetest.Clock, ids store.IDFunc) store.Repository {
		s, err := Open(":memory:", WithClock(clock.Now), WithIDFunc(ids))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenReappliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uibuilder.sqlite")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	created, err := s.Create(ctx, store.NewRecord{Name: "Persisted"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Name)
	assert.Nil(t, got.Description)
	assert.Len(t, got.ID, 36)
}
