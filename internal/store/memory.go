package store

import (
	"sync"

	"github.com/DS9cl/Web/internal/model"
)

// MemoryStore is an in-memory Store for tests. It mirrors FileStore
// semantics: full-dataset reads and writes, serialized by one lock.
type MemoryStore struct {
	mu   sync.Mutex
	data model.Dataset
}

// NewMemory returns a MemoryStore holding an empty dataset.
func NewMemory() *MemoryStore {
	return &MemoryStore{data: model.EmptyDataset()}
}

// ReadAll implements Store.
func (s *MemoryStore) ReadAll() (model.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone(), nil
}

// Update implements Store. fn runs on a copy; nothing is committed if it
// returns an error.
func (s *MemoryStore) Update(fn func(*model.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data.Clone()
	if err := fn(&d); err != nil {
		return err
	}
	s.data = d
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
