package store

import (
	"context"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

// ActiveVisitRecord is a visitor currently on site.
type ActiveVisitRecord struct {
	VisitorPhone string
	VisitorName  string
	VisitType    types.VisitType
	PhotoRef     string
	CheckInTime  time.Time
}

// VisitRecord is a completed visit: an ActiveVisitRecord plus its checkout
// timestamp.  Immutable once appended to history.
type VisitRecord struct {
	ActiveVisitRecord
	CheckOutTime time.Time
}

// ActiveVisitStore is the authoritative map of who is on site, keyed by
// visitor phone.  At most one active visit per phone.
type ActiveVisitStore interface {
	// Admit inserts rec unless the phone already has an active visit, in
	// which case the existing record is kept untouched and inserted is
	// false.  First admission wins.
	Admit(ctx context.Context, rec ActiveVisitRecord) (inserted bool, err error)

	// Remove deletes and returns the active visit for phone.  Returns
	// ErrNotActive if there is none.  This is the only deletion path.
	Remove(ctx context.Context, phone string) (ActiveVisitRecord, error)

	// ListActive returns a snapshot safe to iterate while the store
	// continues to mutate.
	ListActive(ctx context.Context) ([]ActiveVisitRecord, error)
}

// VisitHistoryStore is the append-only log of completed visits.
type VisitHistoryStore interface {
	Append(ctx context.Context, rec VisitRecord) error

	// ListRecent returns all entries, most recently completed first.
	ListRecent(ctx context.Context) ([]VisitRecord, error)

	// DeleteBefore removes entries checked out before cutoff, returning
	// how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
