package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store/memory"
)

func newTestRegistry(start time.Time) (*service.PreApprovalRegistry, *time.Time) {
	now := start
	clock := func() time.Time { return now }
	return service.NewPreApprovalRegistry(memory.NewPreApprovalStore(), clock), &now
}

// atMinute returns a wall-clock time at the given HH:MM on a fixed day.
func atMinute(hour, min int) time.Time {
	return time.Date(2025, 6, 1, hour, min, 30, 0, time.UTC)
}

func TestGrant_ParsesWindow(t *testing.T) {
	reg, _ := newTestRegistry(atMinute(8, 0))

	rec, err := reg.Grant(context.Background(), "9876543210", "Asha", "09:00-17:30")
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if rec.WindowStart != 9*60 {
		t.Errorf("expected start=540, got %d", rec.WindowStart)
	}
	if rec.WindowEnd != 17*60+30 {
		t.Errorf("expected end=1050, got %d", rec.WindowEnd)
	}
}

func TestGrant_BadWindow(t *testing.T) {
	reg, _ := newTestRegistry(atMinute(8, 0))

	for _, window := range []string{"", "0900-1700", "09:00", "25:00-26:00", "09:xx-10:00", "09:00-10:75"} {
		if _, err := reg.Grant(context.Background(), "9876543210", "Asha", window); !errors.Is(err, service.ErrBadWindow) {
			t.Errorf("window %q: expected ErrBadWindow, got %v", window, err)
		}
	}
}

func TestGrant_LastWriteWins(t *testing.T) {
	reg, now := newTestRegistry(atMinute(10, 0))

	if _, err := reg.Grant(context.Background(), "9876543210", "Asha", "09:00-11:00"); err != nil {
		t.Fatalf("first Grant: %v", err)
	}
	if _, err := reg.Grant(context.Background(), "9876543210", "Asha", "14:00-15:00"); err != nil {
		t.Fatalf("second Grant: %v", err)
	}

	// The first window no longer exists for this phone.
	*now = atMinute(10, 0)
	if _, ok, _ := reg.Check(context.Background(), "9876543210"); ok {
		t.Error("expected the overwritten window not to match")
	}

	*now = atMinute(14, 30)
	if _, ok, _ := reg.Check(context.Background(), "9876543210"); !ok {
		t.Error("expected the new window to match")
	}
}

func TestCheck_InclusiveBoundaries(t *testing.T) {
	reg, now := newTestRegistry(atMinute(8, 0))

	if _, err := reg.Grant(context.Background(), "9876543210", "Asha", "09:00-09:05"); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	cases := []struct {
		hour, min int
		want      bool
	}{
		{8, 59, false},
		{9, 0, true},
		{9, 3, true},
		{9, 5, true},
		{9, 6, false},
	}
	for _, tc := range cases {
		*now = atMinute(tc.hour, tc.min)
		rec, ok, err := reg.Check(context.Background(), "9876543210")
		if err != nil {
			t.Fatalf("Check at %02d:%02d: %v", tc.hour, tc.min, err)
		}
		if ok != tc.want {
			t.Errorf("at %02d:%02d expected valid=%v, got %v", tc.hour, tc.min, tc.want, ok)
		}
		if ok && rec.VisitorName != "Asha" {
			t.Errorf("expected grant name Asha, got %q", rec.VisitorName)
		}
	}
}

func TestCheck_ReversedWindowNeverMatches(t *testing.T) {
	reg, now := newTestRegistry(atMinute(8, 0))

	// start > end is stored as given; evaluated literally it cannot match.
	if _, err := reg.Grant(context.Background(), "9876543210", "Asha", "17:00-09:00"); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	for _, tc := range []struct{ hour, min int }{{8, 0}, {12, 0}, {17, 0}, {23, 59}} {
		*now = atMinute(tc.hour, tc.min)
		if _, ok, _ := reg.Check(context.Background(), "9876543210"); ok {
			t.Errorf("at %02d:%02d expected reversed window not to match", tc.hour, tc.min)
		}
	}
}

func TestCheck_UnknownPhone(t *testing.T) {
	reg, _ := newTestRegistry(atMinute(9, 0))

	_, ok, err := reg.Check(context.Background(), "0000000000")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if ok {
		t.Error("expected valid=false for an unknown phone")
	}
}
