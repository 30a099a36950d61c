package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// Memory is a Repository held in process memory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]schema.Record
	now     func() time.Time
	newID   IDFunc
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDFunc replaces the id generator.
func WithIDFunc(fn IDFunc) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewMemory constructs an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		records: make(map[string]schema.Record),
		now:     time.Now,
		newID:   NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Memory) List(ctx context.Context) ([]schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]schema.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	m.mu.RUnlock()
	SortByUpdated(out)
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return schema.Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return schema.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (m *Memory) GetByName(ctx context.Context, name string) (schema.Record, error) {
	all, err := m.List(ctx)
	if err != nil {
		return schema.Record{}, err
	}
	for _, rec := range all {
		if rec.Name == name {
			return rec, nil
		}
	}
	return schema.Record{}, fmt.Errorf("%w: name %q", ErrNotFound, name)
}

func (m *Memory) Create(ctx context.Context, rec NewRecord) (schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return schema.Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return schema.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Build(m.newID(), rec, m.now())
	m.records[out.ID] = out
	return out, nil
}

func (m *Memory) Update(ctx context.Context, id string, patch Patch) (schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return schema.Record{}, err
	}
	if err := patch.Validate(); err != nil {
		return schema.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return schema.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec = patch.Apply(rec, m.now())
	m.records[id] = rec
	return rec, nil
}

func (m *Memory) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

// SortByUpdated orders records most recently updated first, breaking ties
// by name then id so listings are stable.
func SortByUpdated(records []schema.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
