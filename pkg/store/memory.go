package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/patchbaylabs/patchbay/pkg/observability"
)

// Memory is an in-process store. Records are deep-copied on the way in
// and out so callers cannot mutate stored state.
type Memory struct {
	mu   sync.RWMutex
	recs map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{recs: make(map[string]*Record)}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	m.mu.RLock()
	rec, ok := m.recs[id]
	m.mu.RUnlock()
	observability.Store().OnGet(ctx, "memory", id, ok, time.Since(start))
	if !ok {
		return nil, notFound(id)
	}
	return rec.Clone(), nil
}

// Put implements Store.
func (m *Memory) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	cp := rec.Clone()
	m.mu.Lock()
	if prev, ok := m.recs[cp.ID]; ok {
		stamp(cp, &prev.CreatedAt)
	} else {
		stamp(cp, nil)
	}
	m.recs[cp.ID] = cp
	m.mu.Unlock()
	rec.CreatedAt = cp.CreatedAt
	rec.UpdatedAt = cp.UpdatedAt
	observability.Store().OnPut(ctx, "memory", cp.ID, time.Since(start), nil)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.recs, id)
	m.mu.Unlock()
	observability.Store().OnDelete(ctx, "memory", id, nil)
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]Info, error) {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.recs))
	for _, rec := range m.recs {
		infos = append(infos, infoOf(rec))
	}
	m.mu.RUnlock()
	sortInfos(infos)
	return infos, nil
}

// Close implements Store. It is a no-op for the memory backend.
func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)

// sortInfos orders listings most recently updated first, breaking ties
// by ID for deterministic output.
func sortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
}
