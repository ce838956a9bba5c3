// Package migrations holds the goose SQL migrations for the optional Postgres
// store: the processed_messages set and the acquisitions history.
package migrations

import "embed"

// FS contains every *.sql migration, applied in file-name order.
//
//go:embed *.sql
var FS embed.FS
