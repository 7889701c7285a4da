package store

import (
	"context"
	"errors"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

var (
	ErrDuplicateRequest = errors.New("request id already exists")
	ErrRequestNotFound  = errors.New("approval request not found")
	ErrNotActive        = errors.New("no active visit for phone")
)

// ApprovalRecord is one entry in the approval ledger.  Status is stored as
// last observed; callers must go through EffectiveStatus (or the store's
// Resolve/Status operations, which apply it) rather than reading Status raw,
// so that a PENDING record past its deadline is always seen as EXPIRED.
type ApprovalRecord struct {
	RequestID    string
	VisitorName  string
	VisitorPhone string
	PhotoRef     string
	Status       types.ApprovalStatus
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// EffectiveStatus is the single place expiry policy lives.  A PENDING record
// whose deadline has passed reads as EXPIRED; everything else reads as
// stored.  Expiry is strict: at exactly ExpiresAt the record is still live.
func EffectiveStatus(rec ApprovalRecord, now time.Time) types.ApprovalStatus {
	if rec.Status == types.StatusPending && now.After(rec.ExpiresAt) {
		return types.StatusExpired
	}
	return rec.Status
}

// ApprovalStore holds approval requests keyed by request id.  Resolve and
// Status perform the lazy PENDING→EXPIRED transition atomically with their
// read, so concurrent callers can never observe conflicting transitions for
// the same id.
type ApprovalStore interface {
	// Create inserts a new PENDING record.  Returns ErrDuplicateRequest
	// if the id is already present.
	Create(ctx context.Context, rec ApprovalRecord) error

	// Resolve moves a PENDING record to outcome (APPROVED or REJECTED)
	// and returns the record as stored afterwards.  A record past its
	// deadline is first moved to EXPIRED and returned in that state — a
	// late decision never overrides an expiry.  Resolving a record that
	// is already terminal returns it unchanged.  Returns
	// ErrRequestNotFound for an unknown id.
	Resolve(ctx context.Context, requestID string, outcome types.ApprovalStatus, now time.Time) (ApprovalRecord, error)

	// Status returns the record with lazy expiry applied (and persisted).
	// Returns ErrRequestNotFound for an unknown id.
	Status(ctx context.Context, requestID string, now time.Time) (ApprovalRecord, error)

	// DeleteExpiredBefore removes records whose deadline passed before
	// cutoff.  Every such record is terminal or lazily EXPIRED, so with a
	// cutoff well in the past this never touches a live request.  Returns
	// the number of records removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
