package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

// ApprovalStore is the in-memory approval ledger.  The single mutex
// serializes every read-then-write transition, which is what keeps a lazy
// expiry check and a concurrent decision from both observing PENDING.
type ApprovalStore struct {
	mu   sync.Mutex
	data map[string]store.ApprovalRecord
}

func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{
		data: make(map[string]store.ApprovalRecord),
	}
}

func (s *ApprovalStore) Create(_ context.Context, rec store.ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[rec.RequestID]; ok {
		return store.ErrDuplicateRequest
	}
	s.data[rec.RequestID] = rec
	return nil
}

func (s *ApprovalStore) Resolve(_ context.Context, requestID string, outcome types.ApprovalStatus, now time.Time) (store.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[requestID]
	if !ok {
		return store.ApprovalRecord{}, store.ErrRequestNotFound
	}

	rec.Status = store.EffectiveStatus(rec, now)
	if rec.Status == types.StatusPending {
		rec.Status = outcome
	}
	s.data[requestID] = rec
	return rec, nil
}

func (s *ApprovalStore) Status(_ context.Context, requestID string, now time.Time) (store.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[requestID]
	if !ok {
		return store.ApprovalRecord{}, store.ErrRequestNotFound
	}

	rec.Status = store.EffectiveStatus(rec, now)
	s.data[requestID] = rec
	return rec, nil
}

func (s *ApprovalStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rec := range s.data {
		if rec.ExpiresAt.Before(cutoff) {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}
