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

type ActiveVisitStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewActiveVisitStore(db *sql.DB, writer *dbpkg.Worker) *ActiveVisitStore {
	return &ActiveVisitStore{db: db, writer: writer}
}

// Admit inserts the record unless the phone is already active.  INSERT OR
// IGNORE against the primary key gives first-admission-wins without a
// separate existence check.
func (s *ActiveVisitStore) Admit(ctx context.Context, rec store.ActiveVisitRecord) (bool, error) {
	checkInMs := rec.CheckInTime.UTC().UnixMilli()

	var photoRef any
	if rec.PhotoRef != "" {
		photoRef = rec.PhotoRef
	}

	var inserted bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO active_visits(
  visitor_phone, visitor_name, visit_type, photo_ref, checked_in_at_ms
) VALUES (?, ?, ?, ?, ?);
`,
			rec.VisitorPhone, rec.VisitorName, string(rec.VisitType), photoRef, checkInMs,
		)
		if err != nil {
			return fmt.Errorf("Admit insert: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted = n == 1
		return nil
	})
	return inserted, err
}

func (s *ActiveVisitStore) Remove(ctx context.Context, phone string) (store.ActiveVisitRecord, error) {
	var out store.ActiveVisitRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var (
			rec       store.ActiveVisitRecord
			photoRef  sql.NullString
			visitType string
			checkInMs int64
		)

		err := tx.QueryRowContext(ctx, `
SELECT visitor_phone, visitor_name, visit_type, photo_ref, checked_in_at_ms
FROM active_visits
WHERE visitor_phone = ?;
`, phone).Scan(&rec.VisitorPhone, &rec.VisitorName, &visitType, &photoRef, &checkInMs)
		if err == sql.ErrNoRows {
			return store.ErrNotActive
		}
		if err != nil {
			return fmt.Errorf("Remove select: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
DELETE FROM active_visits WHERE visitor_phone = ?;
`, phone); err != nil {
			return fmt.Errorf("Remove delete: %w", err)
		}

		if photoRef.Valid {
			rec.PhotoRef = photoRef.String
		}
		rec.VisitType = types.VisitType(visitType)
		rec.CheckInTime = time.UnixMilli(checkInMs).UTC()
		out = rec
		return nil
	})
	return out, err
}

func (s *ActiveVisitStore) ListActive(ctx context.Context) ([]store.ActiveVisitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT visitor_phone, visitor_name, visit_type, photo_ref, checked_in_at_ms
FROM active_visits
ORDER BY checked_in_at_ms;
`)
	if err != nil {
		return nil, fmt.Errorf("ListActive query: %w", err)
	}
	defer rows.Close()

	var out []store.ActiveVisitRecord
	for rows.Next() {
		var (
			rec       store.ActiveVisitRecord
			photoRef  sql.NullString
			visitType string
			checkInMs int64
		)
		if err := rows.Scan(&rec.VisitorPhone, &rec.VisitorName, &visitType, &photoRef, &checkInMs); err != nil {
			return nil, fmt.Errorf("ListActive scan: %w", err)
		}
		if photoRef.Valid {
			rec.PhotoRef = photoRef.String
		}
		rec.VisitType = types.VisitType(visitType)
		rec.CheckInTime = time.UnixMilli(checkInMs).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
