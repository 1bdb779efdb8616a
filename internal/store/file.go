package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/DS9cl/Web/internal/model"
)

// FileStore keeps the dataset in one pretty-printed JSON file, rewritten
// in full on every mutation. A single mutex serializes all access, so a
// read-modify-write cycle can never lose a concurrent writer's update.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// OpenFile opens the store at path, creating the file with an empty
// dataset if it does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat data file: %w", err)
		}
		empty := model.EmptyDataset()
		if err := s.save(&empty); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() (model.Dataset, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read data file: %w", err)
	}
	var d model.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return model.Dataset{}, fmt.Errorf("decode data file: %w", err)
	}
	return d, nil
}

func (s *FileStore) save(d *model.Dataset) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

// ReadAll implements Store.
func (s *FileStore) ReadAll() (model.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update implements Store. The lock is held across load, fn, and save.
func (s *FileStore) Update(fn func(*model.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&d); err != nil {
		return err
	}
	return s.save(&d)
}

// Close implements Store. The file needs no teardown.
func (s *FileStore) Close() error { return nil }
