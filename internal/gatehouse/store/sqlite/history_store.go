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

type VisitHistoryStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVisitHistoryStore(db *sql.DB, writer *dbpkg.Worker) *VisitHistoryStore {
	return &VisitHistoryStore{db: db, writer: writer}
}

func (s *VisitHistoryStore) Append(ctx context.Context, rec store.VisitRecord) error {
	checkInMs := rec.CheckInTime.UTC().UnixMilli()
	checkOutMs := rec.CheckOutTime.UTC().UnixMilli()

	var photoRef any
	if rec.PhotoRef != "" {
		photoRef = rec.PhotoRef
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO visit_history(
  visitor_phone, visitor_name, visit_type, photo_ref, checked_in_at_ms, checked_out_at_ms
) VALUES (?, ?, ?, ?, ?, ?);
`,
			rec.VisitorPhone, rec.VisitorName, string(rec.VisitType),
			photoRef, checkInMs, checkOutMs,
		); err != nil {
			return fmt.Errorf("Append history: %w", err)
		}
		return nil
	})
}

// ListRecent orders by checkout time, then rowid for same-millisecond
// checkouts, newest first.
func (s *VisitHistoryStore) ListRecent(ctx context.Context) ([]store.VisitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT visitor_phone, visitor_name, visit_type, photo_ref, checked_in_at_ms, checked_out_at_ms
FROM visit_history
ORDER BY checked_out_at_ms DESC, id DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListRecent query: %w", err)
	}
	defer rows.Close()

	var out []store.VisitRecord
	for rows.Next() {
		var (
			rec        store.VisitRecord
			photoRef   sql.NullString
			visitType  string
			checkInMs  int64
			checkOutMs int64
		)
		if err := rows.Scan(
			&rec.VisitorPhone, &rec.VisitorName, &visitType,
			&photoRef, &checkInMs, &checkOutMs,
		); err != nil {
			return nil, fmt.Errorf("ListRecent scan: %w", err)
		}
		if photoRef.Valid {
			rec.PhotoRef = photoRef.String
		}
		rec.VisitType = types.VisitType(visitType)
		rec.CheckInTime = time.UnixMilli(checkInMs).UTC()
		rec.CheckOutTime = time.UnixMilli(checkOutMs).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *VisitHistoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM visit_history
WHERE checked_out_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("DeleteBefore: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
