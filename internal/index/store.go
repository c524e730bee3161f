package index

import (
	"errors"
	"sync"

	"github.com/clauselens/clauselens/internal/doc"
)

// ErrNotIndexed is returned when an operation references a document that has
// no current in-memory index. The document must be (re-)ingested first.
var ErrNotIndexed = errors.New("document not indexed")

// Store holds the live document indexes for this process. It is constructed
// once at startup and injected wherever retrieval state is needed; its
// contents are lost on restart. One index per document ID, last write wins.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*doc.DocumentIndex
}

func NewStore() *Store {
	return &Store{docs: make(map[string]*doc.DocumentIndex)}
}

// Get returns the index for docID or ErrNotIndexed.
func (s *Store) Get(docID string) (*doc.DocumentIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.docs[docID]
	if !ok {
		return nil, ErrNotIndexed
	}
	return idx, nil
}

// Put installs (or replaces) the index for idx.DocID.
func (s *Store) Put(idx *doc.DocumentIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[idx.DocID] = idx
}

// Has reports whether docID currently has an index.
func (s *Store) Has(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[docID]
	return ok
}

// Delete drops the index for docID, if present.
func (s *Store) Delete(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
}
