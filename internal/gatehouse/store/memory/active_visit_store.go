package memory

import (
	"context"
	"sync"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
)

type ActiveVisitStore struct {
	mu   sync.Mutex
	data map[string]store.ActiveVisitRecord
}

func NewActiveVisitStore() *ActiveVisitStore {
	return &ActiveVisitStore{
		data: make(map[string]store.ActiveVisitRecord),
	}
}

func (s *ActiveVisitStore) Admit(_ context.Context, rec store.ActiveVisitRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[rec.VisitorPhone]; ok {
		return false, nil
	}
	s.data[rec.VisitorPhone] = rec
	return true, nil
}

func (s *ActiveVisitStore) Remove(_ context.Context, phone string) (store.ActiveVisitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[phone]
	if !ok {
		return store.ActiveVisitRecord{}, store.ErrNotActive
	}
	delete(s.data, phone)
	return rec, nil
}

// ListActive returns a copy, so callers can iterate while admissions and
// checkouts continue.
func (s *ActiveVisitStore) ListActive(_ context.Context) ([]store.ActiveVisitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.ActiveVisitRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	return out, nil
}
