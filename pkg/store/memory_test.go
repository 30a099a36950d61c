package store_test

import (
	"testing"

	"github.com/goliatone/go-uibuilder/pkg/store"
	"github.com/goliatone/go-uibuilder/pkg/store/storetest"
)

func TestMemoryRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T, clock *storetest.Clock, ids store.IDFunc) store.Repository {
		return store.NewMemory(store.WithClock(clock.Now), store.WithIDFunc(ids))
	})
}
