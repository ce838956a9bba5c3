package db

import "time"

const (
	maxConnectionRetries = 8
	connectBackoffStart  = 500 * time.Millisecond
	connectBackoffMax    = 8 * time.Second
)

// Advisory lock ids.
const (
	migrationLockID int64 = 7_340_001
	// PruneLockID serializes processed-message pruning across replicas.
	PruneLockID int64 = 7_340_002
)
