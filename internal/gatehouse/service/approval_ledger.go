package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

var (
	ErrMissingVisitorName  = errors.New("visitor_name is required")
	ErrMissingVisitorPhone = errors.New("visitor_phone is required")
	ErrInvalidDecision     = errors.New("decision must be APPROVED or REJECTED")
)

// DefaultApprovalTTL is how long a host has to answer before a request
// expires unanswered.
const DefaultApprovalTTL = 60 * time.Second

// ApprovalLedger tracks approval requests from creation through a terminal
// APPROVED/REJECTED/EXPIRED state.  Expiry is never scheduled; it is applied
// lazily by the store on every read and resolve.
type ApprovalLedger struct {
	store store.ApprovalStore
	ttl   time.Duration
	now   Clock
}

func NewApprovalLedger(st store.ApprovalStore, ttl time.Duration, clock Clock) *ApprovalLedger {
	if ttl <= 0 {
		ttl = DefaultApprovalTTL
	}
	if clock == nil {
		clock = UTCNow
	}
	return &ApprovalLedger{store: st, ttl: ttl, now: clock}
}

// Create inserts a PENDING request with a fixed deadline of now+TTL.  The
// deadline is never extended.  An empty request id gets a generated one; a
// caller-supplied id that already exists fails with ErrDuplicateRequest.
func (l *ApprovalLedger) Create(ctx context.Context, requestID, visitorName, visitorPhone, photoRef string) (store.ApprovalRecord, error) {
	visitorName = strings.TrimSpace(visitorName)
	visitorPhone = strings.TrimSpace(visitorPhone)

	if visitorName == "" {
		return store.ApprovalRecord{}, ErrMissingVisitorName
	}
	if visitorPhone == "" {
		return store.ApprovalRecord{}, ErrMissingVisitorPhone
	}

	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	now := l.now()
	rec := store.ApprovalRecord{
		RequestID:    requestID,
		VisitorName:  visitorName,
		VisitorPhone: visitorPhone,
		PhotoRef:     photoRef,
		Status:       types.StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(l.ttl),
	}

	if err := l.store.Create(ctx, rec); err != nil {
		return store.ApprovalRecord{}, err
	}
	return rec, nil
}

// Resolve applies a host decision.  The returned record carries the status
// the ledger actually settled on: a request past its deadline comes back
// EXPIRED regardless of the decision, and an already-terminal request comes
// back unchanged.
func (l *ApprovalLedger) Resolve(ctx context.Context, requestID string, outcome types.ApprovalStatus) (store.ApprovalRecord, error) {
	if outcome != types.StatusApproved && outcome != types.StatusRejected {
		return store.ApprovalRecord{}, ErrInvalidDecision
	}
	return l.store.Resolve(ctx, requestID, outcome, l.now())
}

// Status returns the request's current status with lazy expiry applied.
// Unknown ids surface as store.ErrRequestNotFound; the coordinator maps
// that to UNKNOWN for pollers.
func (l *ApprovalLedger) Status(ctx context.Context, requestID string) (types.ApprovalStatus, error) {
	rec, err := l.store.Status(ctx, requestID, l.now())
	if err != nil {
		return "", err
	}
	return rec.Status, nil
}
