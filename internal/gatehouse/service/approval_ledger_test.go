package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store/memory"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

// newTestLedger returns a ledger whose clock the test controls by
// reassigning *now.
func newTestLedger(start time.Time) (*service.ApprovalLedger, *time.Time) {
	now := start
	clock := func() time.Time { return now }
	ledger := service.NewApprovalLedger(memory.NewApprovalStore(), 60*time.Second, clock)
	return ledger, &now
}

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestCreate_SetsDeadlineFromClock(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	rec, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rec.Status != types.StatusPending {
		t.Errorf("expected PENDING, got %s", rec.Status)
	}
	if !rec.ExpiresAt.Equal(testStart.Add(60 * time.Second)) {
		t.Errorf("expected expiry at created+60s, got %s", rec.ExpiresAt)
	}
}

func TestCreate_GeneratesIDWhenEmpty(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	rec, err := ledger.Create(context.Background(), "", "Asha", "9876543210", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.RequestID == "" {
		t.Error("expected a generated request id")
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", ""); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := ledger.Create(context.Background(), "req-1", "Bela", "9000000000", "")
	if !errors.Is(err, store.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "", "9876543210", ""); !errors.Is(err, service.ErrMissingVisitorName) {
		t.Errorf("expected ErrMissingVisitorName, got %v", err)
	}
	if _, err := ledger.Create(context.Background(), "req-2", "Asha", "  ", ""); !errors.Is(err, service.ErrMissingVisitorPhone) {
		t.Errorf("expected ErrMissingVisitorPhone, got %v", err)
	}
}

func TestResolve_Approve(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, err := ledger.Resolve(context.Background(), "req-1", types.StatusApproved)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Status != types.StatusApproved {
		t.Errorf("expected APPROVED, got %s", rec.Status)
	}
}

func TestResolve_LateDecisionReturnsExpired(t *testing.T) {
	ledger, now := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	*now = testStart.Add(61 * time.Second)

	rec, err := ledger.Resolve(context.Background(), "req-1", types.StatusApproved)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Status != types.StatusExpired {
		t.Errorf("expected EXPIRED for a late decision, got %s", rec.Status)
	}
}

func TestResolve_ExactDeadlineStillLive(t *testing.T) {
	ledger, now := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Expiry is strict: at exactly expiresAt the decision still lands.
	*now = testStart.Add(60 * time.Second)

	rec, err := ledger.Resolve(context.Background(), "req-1", types.StatusApproved)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Status != types.StatusApproved {
		t.Errorf("expected APPROVED at the deadline, got %s", rec.Status)
	}
}

func TestResolve_TerminalIsSticky(t *testing.T) {
	ledger, now := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := ledger.Resolve(context.Background(), "req-1", types.StatusRejected); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	// A repeated or conflicting decision returns the existing terminal
	// state unchanged, even long after the deadline.
	*now = testStart.Add(10 * time.Minute)

	rec, err := ledger.Resolve(context.Background(), "req-1", types.StatusApproved)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if rec.Status != types.StatusRejected {
		t.Errorf("expected REJECTED to stick, got %s", rec.Status)
	}

	status, err := ledger.Status(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != types.StatusRejected {
		t.Errorf("expected REJECTED from Status, got %s", status)
	}
}

func TestResolve_InvalidOutcome(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	_, err := ledger.Resolve(context.Background(), "req-1", types.StatusExpired)
	if !errors.Is(err, service.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestStatus_LazyExpiryPersists(t *testing.T) {
	ledger, now := newTestLedger(testStart)

	if _, err := ledger.Create(context.Background(), "req-1", "Asha", "9876543210", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	*now = testStart.Add(2 * time.Minute)

	status, err := ledger.Status(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != types.StatusExpired {
		t.Errorf("expected EXPIRED, got %s", status)
	}

	// Expiry is monotonic: winding the clock back does not revive it.
	*now = testStart

	status, err = ledger.Status(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Status after rewind: %v", err)
	}
	if status != types.StatusExpired {
		t.Errorf("expected EXPIRED to stick, got %s", status)
	}
}

func TestStatus_UnknownID(t *testing.T) {
	ledger, _ := newTestLedger(testStart)

	_, err := ledger.Status(context.Background(), "no-such-id")
	if !errors.Is(err, store.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}
