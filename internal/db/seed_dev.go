package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// HostContact is the host number dev approval cards are addressed to.
	// Unused by the seeder today; kept so callers can thread config through.
	HostContact string
}

// SeedDev inserts a permissive pre-approval grant so a fresh dev database
// can exercise the pre-approval lookup path without sending any messages.
func SeedDev(ctx context.Context, db *sql.DB, _ SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	// All-day window: minute 0 through minute 1439.
	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO pre_approvals(
  visitor_phone, visitor_name, window_start_min, window_end_min, granted_at_ms
) VALUES ('5550100000', 'Dev Visitor', 0, 1439, ?);`, now); err != nil {
		return fmt.Errorf("seed pre_approvals: %w", err)
	}

	return nil
}
