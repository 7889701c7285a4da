package service

import (
	"context"
	"strings"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

// VisitTracker owns the on-site ledger: idempotent admission keyed by phone,
// mandatory checkout into the history log.
type VisitTracker struct {
	active  store.ActiveVisitStore
	history store.VisitHistoryStore
	now     Clock
}

func NewVisitTracker(active store.ActiveVisitStore, history store.VisitHistoryStore, clock Clock) *VisitTracker {
	if clock == nil {
		clock = UTCNow
	}
	return &VisitTracker{active: active, history: history, now: clock}
}

// Admit records the visitor as on site.  If the phone already has an active
// visit the existing record — including its original check-in time — is kept
// and inserted is false.  Repeat admissions are a no-op, not an error.
func (t *VisitTracker) Admit(ctx context.Context, phone, name string, visitType types.VisitType, photoRef string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, ErrMissingVisitorPhone
	}

	rec := store.ActiveVisitRecord{
		VisitorPhone: phone,
		VisitorName:  strings.TrimSpace(name),
		VisitType:    visitType,
		PhotoRef:     photoRef,
		CheckInTime:  t.now(),
	}
	return t.active.Admit(ctx, rec)
}

// Checkout removes the visitor's active record, stamps the checkout time,
// and appends the completed visit to history.  Returns store.ErrNotActive
// if the phone has no active visit.
func (t *VisitTracker) Checkout(ctx context.Context, phone string) (store.VisitRecord, error) {
	rec, err := t.active.Remove(ctx, strings.TrimSpace(phone))
	if err != nil {
		return store.VisitRecord{}, err
	}

	completed := store.VisitRecord{
		ActiveVisitRecord: rec,
		CheckOutTime:      t.now(),
	}
	if err := t.history.Append(ctx, completed); err != nil {
		return store.VisitRecord{}, err
	}
	return completed, nil
}

func (t *VisitTracker) ListActive(ctx context.Context) ([]store.ActiveVisitRecord, error) {
	return t.active.ListActive(ctx)
}

// History returns completed visits, most recently checked out first.
func (t *VisitTracker) History(ctx context.Context) ([]store.VisitRecord, error) {
	return t.history.ListRecent(ctx)
}
