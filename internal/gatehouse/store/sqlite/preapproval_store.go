package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/gatehouse-io/gatehouse/internal/db"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
)

type PreApprovalStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPreApprovalStore(db *sql.DB, writer *dbpkg.Worker) *PreApprovalStore {
	return &PreApprovalStore{db: db, writer: writer}
}

// Put upserts the grant for the phone — last write wins, no history kept.
func (s *PreApprovalStore) Put(ctx context.Context, rec store.PreApprovalRecord) error {
	grantedMs := rec.GrantedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO pre_approvals(
  visitor_phone, visitor_name, window_start_min, window_end_min, granted_at_ms
) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(visitor_phone) DO UPDATE SET
  visitor_name     = excluded.visitor_name,
  window_start_min = excluded.window_start_min,
  window_end_min   = excluded.window_end_min,
  granted_at_ms    = excluded.granted_at_ms;
`,
			rec.VisitorPhone, rec.VisitorName, rec.WindowStart, rec.WindowEnd, grantedMs,
		); err != nil {
			return fmt.Errorf("Put pre-approval: %w", err)
		}
		return nil
	})
}

func (s *PreApprovalStore) Get(ctx context.Context, phone string) (store.PreApprovalRecord, bool, error) {
	var (
		rec       store.PreApprovalRecord
		grantedMs int64
	)

	err := s.db.QueryRowContext(ctx, `
SELECT visitor_phone, visitor_name, window_start_min, window_end_min, granted_at_ms
FROM pre_approvals
WHERE visitor_phone = ?;
`, phone).Scan(
		&rec.VisitorPhone, &rec.VisitorName, &rec.WindowStart, &rec.WindowEnd, &grantedMs,
	)
	if err == sql.ErrNoRows {
		return store.PreApprovalRecord{}, false, nil
	}
	if err != nil {
		return store.PreApprovalRecord{}, false, fmt.Errorf("Get pre-approval: %w", err)
	}

	rec.GrantedAt = time.UnixMilli(grantedMs).UTC()
	return rec, true, nil
}
