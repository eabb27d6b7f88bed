// Package sqlstore persists recorded sequences in a SQL database.
//
// Two dialects are supported: SQLite (a single file, no setup, through the pure Go
// modernc.org/sqlite driver) and MySQL/MariaDB for sequences shared between machines.
// Each sequence is one row; its steps are kept as a JSON document.
package sqlstore
