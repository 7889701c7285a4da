package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/gatehouse-io/gatehouse/internal/db"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

type ApprovalStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewApprovalStore(db *sql.DB, writer *dbpkg.Worker) *ApprovalStore {
	return &ApprovalStore{db: db, writer: writer}
}

func (s *ApprovalStore) Create(ctx context.Context, rec store.ApprovalRecord) error {
	createdMs := rec.CreatedAt.UTC().UnixMilli()
	expiresMs := rec.ExpiresAt.UTC().UnixMilli()

	var photoRef any
	if rec.PhotoRef != "" {
		photoRef = rec.PhotoRef
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO approval_requests(
  request_id, visitor_name, visitor_phone, photo_ref, status, created_at_ms, expires_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`,
			rec.RequestID, rec.VisitorName, rec.VisitorPhone, photoRef,
			string(rec.Status), createdMs, expiresMs,
		)
		if err != nil {
			return fmt.Errorf("Create insert: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrDuplicateRequest
		}
		return nil
	})
}

// Resolve applies lazy expiry and the PENDING→outcome transition inside one
// write transaction, so a late decision and a status poll racing on the same
// id serialize through the worker.
func (s *ApprovalStore) Resolve(ctx context.Context, requestID string, outcome types.ApprovalStatus, now time.Time) (store.ApprovalRecord, error) {
	var out store.ApprovalRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		rec, err := selectApproval(ctx, tx, requestID)
		if err != nil {
			return err
		}

		next := store.EffectiveStatus(rec, now)
		if next == types.StatusPending {
			next = outcome
		}
		if next != rec.Status {
			if err := updateApprovalStatus(ctx, tx, requestID, next); err != nil {
				return err
			}
			rec.Status = next
		}

		out = rec
		return nil
	})
	return out, err
}

// Status persists the lazy PENDING→EXPIRED transition it observes, matching
// the memory store.
func (s *ApprovalStore) Status(ctx context.Context, requestID string, now time.Time) (store.ApprovalRecord, error) {
	var out store.ApprovalRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		rec, err := selectApproval(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if next := store.EffectiveStatus(rec, now); next != rec.Status {
			if err := updateApprovalStatus(ctx, tx, requestID, next); err != nil {
				return err
			}
			rec.Status = next
		}

		out = rec
		return nil
	})
	return out, err
}

func (s *ApprovalStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM approval_requests
WHERE expires_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("DeleteExpiredBefore: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func selectApproval(ctx context.Context, tx *sql.Tx, requestID string) (store.ApprovalRecord, error) {
	var (
		rec       store.ApprovalRecord
		photoRef  sql.NullString
		status    string
		createdMs int64
		expiresMs int64
	)

	err := tx.QueryRowContext(ctx, `
SELECT request_id, visitor_name, visitor_phone, photo_ref, status, created_at_ms, expires_at_ms
FROM approval_requests
WHERE request_id = ?;
`, requestID).Scan(
		&rec.RequestID, &rec.VisitorName, &rec.VisitorPhone,
		&photoRef, &status, &createdMs, &expiresMs,
	)
	if err == sql.ErrNoRows {
		return store.ApprovalRecord{}, store.ErrRequestNotFound
	}
	if err != nil {
		return store.ApprovalRecord{}, fmt.Errorf("select approval: %w", err)
	}

	if photoRef.Valid {
		rec.PhotoRef = photoRef.String
	}
	rec.Status = types.ApprovalStatus(status)
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.ExpiresAt = time.UnixMilli(expiresMs).UTC()
	return rec, nil
}

func updateApprovalStatus(ctx context.Context, tx *sql.Tx, requestID string, status types.ApprovalStatus) error {
	if _, err := tx.ExecContext(ctx, `
UPDATE approval_requests
SET status = ?
WHERE request_id = ?;
`, string(status), requestID); err != nil {
		return fmt.Errorf("update approval status: %w", err)
	}
	return nil
}
