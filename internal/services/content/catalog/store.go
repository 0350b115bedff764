package catalog

import "sync/atomic"

// Store exposes a published Index to concurrent readers.
//
// SetAll swaps the whole index atomically; there is no incremental mutation.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore returns a store with nothing published.
func NewStore() *Store {
	return &Store{}
}

// SetAll replaces the store contents with a copy of index. Passing nil
// returns the store to its unpublished state.
func (s *Store) SetAll(index *Index) {
	if index == nil {
		s.current.Store(nil)
		return
	}
	s.current.Store(index.clone())
}

// Ready reports whether an index has been published.
func (s *Store) Ready() bool {
	return s != nil && s.current.Load() != nil
}

// GetAll returns every document in index insertion order.
func (s *Store) GetAll() []Document {
	if s == nil {
		return nil
	}
	return s.current.Load().Documents()
}

// GetByID returns the document for id. The boolean is false when the id is
// absent or nothing has been published yet.
func (s *Store) GetByID(id string) (Document, bool) {
	if s == nil {
		return Document{}, false
	}
	return s.current.Load().Get(id)
}

// Len returns the number of published documents.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.current.Load().Len()
}
