package db

import (
	"context"
	"fmt"
)

// TryAcquireAdvisoryLock takes a session-level advisory lock on a dedicated connection.
// When acquired, the returned release func unlocks and returns the connection to the pool.
func (db *DB) TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (func(), bool, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()

		return nil, false, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, false, nil
	}

	release := func() {
		//nolint:errcheck,contextcheck // unlock is best-effort; closing the session releases the lock anyway
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockID)
		conn.Release()
	}

	return release, true, nil
}
