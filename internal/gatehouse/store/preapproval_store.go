package store

import (
	"context"
	"time"
)

// PreApprovalRecord is a standing time-window grant for one phone number.
// WindowStart/WindowEnd are minutes of day (0..1439) with no date component,
// so a grant from a prior day is indistinguishable from today's and a window
// with start > end never matches.  Both quirks are inherited behavior and
// evaluated literally.
type PreApprovalRecord struct {
	VisitorPhone string
	VisitorName  string
	WindowStart  int
	WindowEnd    int
	GrantedAt    time.Time
}

// InWindow reports whether the minute-of-day m falls inside the grant's
// window, inclusive on both ends.
func (r PreApprovalRecord) InWindow(m int) bool {
	return m >= r.WindowStart && m <= r.WindowEnd
}

// PreApprovalStore holds at most one grant per phone; Put overwrites any
// prior grant for the same phone.
type PreApprovalStore interface {
	Put(ctx context.Context, rec PreApprovalRecord) error
	Get(ctx context.Context, phone string) (PreApprovalRecord, bool, error)
}
