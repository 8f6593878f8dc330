package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/sugarcheck/pkg/pipeline"
)

// MemoryStore keeps up to a fixed number of reports in memory, evicting the
// oldest first.
type MemoryStore struct {
	mu      sync.RWMutex
	max     int
	reports map[string]*pipeline.Report
	order   []string // insertion order, oldest first
}

// NewMemoryStore returns a store holding at most max reports. A max of zero
// or less keeps every report.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max, reports: make(map[string]*pipeline.Report)}
}

// Put stores rep.
func (m *MemoryStore) Put(_ context.Context, rep *pipeline.Report) (string, error) {
	assignID(rep)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[rep.ID]; !ok {
		m.order = append(m.order, rep.ID)
	}
	m.reports[rep.ID] = rep
	for m.max > 0 && len(m.order) > m.max {
		delete(m.reports, m.order[0])
		m.order = m.order[1:]
	}
	return rep.ID, nil
}

// Get returns the report stored under id.
func (m *MemoryStore) Get(_ context.Context, id string) (*pipeline.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, notFound(id)
	}
	return rep, nil
}

// List returns up to limit summaries, newest first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	limit = limitOrDefault(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, min(limit, len(m.order)))
	for _, id := range slices.Backward(m.order) {
		if len(out) == limit {
			break
		}
		out = append(out, summarize(m.reports[id]))
	}
	return out, nil
}

// Delete removes the report stored under id.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return notFound(id)
	}
	delete(m.reports, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
