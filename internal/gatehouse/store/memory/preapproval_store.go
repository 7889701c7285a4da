package memory

import (
	"context"
	"sync"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
)

type PreApprovalStore struct {
	mu   sync.RWMutex
	data map[string]store.PreApprovalRecord
}

func NewPreApprovalStore() *PreApprovalStore {
	return &PreApprovalStore{
		data: make(map[string]store.PreApprovalRecord),
	}
}

// Put overwrites any existing grant for the phone — last write wins.
func (s *PreApprovalStore) Put(_ context.Context, rec store.PreApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.VisitorPhone] = rec
	return nil
}

func (s *PreApprovalStore) Get(_ context.Context, phone string) (store.PreApprovalRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[phone]
	return rec, ok, nil
}
