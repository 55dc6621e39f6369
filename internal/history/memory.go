package history

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items []*GeneratedImage // most recent first
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory history.
func NewMemory() *Memory {
	return &Memory{}
}

// Add prepends a copy of img.
func (m *Memory) Add(_ context.Context, img *GeneratedImage) error {
	cp := *img
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = slices.Insert(m.items, 0, &cp)
	return nil
}

// List returns copies of all records, most recent first.
func (m *Memory) List(_ context.Context) ([]*GeneratedImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*GeneratedImage, len(m.items))
	for i, img := range m.items {
		cp := *img
		out[i] = &cp
	}
	return out, nil
}

// Get returns a copy of the record with the given ID.
func (m *Memory) Get(_ context.Context, id string) (*GeneratedImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, img := range m.items {
		if img.ID == id {
			cp := *img
			return &cp, nil
		}
	}
	return nil, nil
}

// Len returns the number of records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
