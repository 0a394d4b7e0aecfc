package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kevin-phan-25/pantrypal/internal/models"
)

// MemoryStore keeps account documents in a process-local map. State is lost
// on restart; it exists for tests and throwaway development runs.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]*models.AccountDoc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*models.AccountDoc),
	}
}

func (s *MemoryStore) Get(ctx context.Context, accountID string) (*models.AccountDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[accountID]
	if !ok {
		return models.NewAccountDoc(), nil
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Update(ctx context.Context, accountID string, fn func(doc *models.AccountDoc) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[accountID]
	if !ok {
		doc = models.NewAccountDoc()
	}

	working := cloneDoc(doc)
	if err := fn(working); err != nil {
		return err
	}

	s.docs[accountID] = working
	return nil
}

func (s *MemoryStore) Accounts(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
