// Package store persists the chat dataset. The default backend is a single
// flat JSON file; an in-memory implementation exists for tests.
package store

import "github.com/DS9cl/Web/internal/model"

// Store is the persistence seam for the whole dataset. There are no
// partial or indexed updates: ReadAll returns a copy of everything, and
// Update runs fn against the current dataset and persists the result.
// Implementations must hold their lock for the entire read-modify-write
// cycle so interleaved updates cannot clobber each other.
type Store interface {
	// ReadAll returns a copy of the dataset. Mutating the copy has no
	// effect on durable state.
	ReadAll() (model.Dataset, error)

	// Update applies fn to the current dataset and persists the result.
	// If fn returns an error nothing is written and the error is
	// returned unchanged.
	Update(fn func(*model.Dataset) error) error

	// Close releases the backing resources.
	Close() error
}

// Compile-time checks.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
