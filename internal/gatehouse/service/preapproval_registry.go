package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
)

var ErrBadWindow = errors.New("window must be HH:MM-HH:MM")

// PreApprovalRegistry holds standing time-window grants that bypass the live
// approval round-trip.  One grant per phone, last write wins.
type PreApprovalRegistry struct {
	store store.PreApprovalStore
	now   Clock
}

func NewPreApprovalRegistry(st store.PreApprovalStore, clock Clock) *PreApprovalRegistry {
	if clock == nil {
		clock = UTCNow
	}
	return &PreApprovalRegistry{store: st, now: clock}
}

// Grant parses the HH:MM-HH:MM window and stores it, overwriting any prior
// grant for the phone.  Boundary order is deliberately not validated: a
// window with start after end is stored as given and will simply never
// match.
func (r *PreApprovalRegistry) Grant(ctx context.Context, phone, name, window string) (store.PreApprovalRecord, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" {
		return store.PreApprovalRecord{}, ErrMissingVisitorPhone
	}
	if name == "" {
		return store.PreApprovalRecord{}, ErrMissingVisitorName
	}

	start, end, err := parseWindow(window)
	if err != nil {
		return store.PreApprovalRecord{}, err
	}

	rec := store.PreApprovalRecord{
		VisitorPhone: phone,
		VisitorName:  name,
		WindowStart:  start,
		WindowEnd:    end,
		GrantedAt:    r.now(),
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return store.PreApprovalRecord{}, err
	}
	return rec, nil
}

// Check reports whether the phone has a grant whose window contains the
// current minute of day, inclusive on both boundaries.
func (r *PreApprovalRegistry) Check(ctx context.Context, phone string) (store.PreApprovalRecord, bool, error) {
	rec, ok, err := r.store.Get(ctx, strings.TrimSpace(phone))
	if err != nil || !ok {
		return store.PreApprovalRecord{}, false, err
	}

	now := r.now()
	minute := now.Hour()*60 + now.Minute()
	if !rec.InWindow(minute) {
		return store.PreApprovalRecord{}, false, nil
	}
	return rec, true, nil
}

func parseWindow(s string) (start, end int, err error) {
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, ErrBadWindow
	}
	if start, err = parseMinuteOfDay(startStr); err != nil {
		return 0, 0, err
	}
	if end, err = parseMinuteOfDay(endStr); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseMinuteOfDay(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, ErrBadWindow
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrBadWindow
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrBadWindow
	}
	return h*60 + m, nil
}

func minuteString(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
