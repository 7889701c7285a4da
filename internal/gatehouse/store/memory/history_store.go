package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
)

// VisitHistoryStore is an in-memory append-only log of completed visits.
type VisitHistoryStore struct {
	mu      sync.Mutex
	entries []store.VisitRecord
}

func NewVisitHistoryStore() *VisitHistoryStore {
	return &VisitHistoryStore{}
}

func (s *VisitHistoryStore) Append(_ context.Context, rec store.VisitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, rec)
	return nil
}

// ListRecent returns a copy in reverse insertion order: most recently
// completed visit first.
func (s *VisitHistoryStore) ListRecent(_ context.Context) ([]store.VisitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.VisitRecord, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *VisitHistoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, rec := range s.entries {
		if rec.CheckOutTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.entries = kept
	return deleted, nil
}
