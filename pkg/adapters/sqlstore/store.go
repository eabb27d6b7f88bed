package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of a Store.
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

// Store implements ports.SequenceStore on database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// payload is the JSON document stored with each sequence.
type payload struct {
	Steps      []domain.Step `json:"steps"`
	Statistics string        `json:"statistics,omitempty"`
	Sealed     string        `json:"sealed,omitempty"`
}

// NewSQLiteStore opens (or creates) the database file at path.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time; a single connection also keeps
	// ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", pragma, err)
		}
	}
	return newStore(ctx, db, SQLite)
}

// NewMySQLStore connects with dsn, e.g. "user:pass@tcp(localhost:3306)/mbt".
// parseTime is always enabled so created_at scans into time.Time.
func NewMySQLStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return newStore(ctx, db, MySQL)
}

// NewFromDB wraps an open database. The schema is created if missing.
func NewFromDB(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	return newStore(ctx, db, dialect)
}

func newStore(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	var ddl string
	switch s.dialect {
	case SQLite:
		ddl = `
			CREATE TABLE IF NOT EXISTS mbt_sequences (
				id TEXT PRIMARY KEY,
				model TEXT NOT NULL DEFAULT '',
				generator TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				payload TEXT NOT NULL
			)`
	case MySQL:
		ddl = `
			CREATE TABLE IF NOT EXISTS mbt_sequences (
				id VARCHAR(255) NOT NULL PRIMARY KEY,
				model VARCHAR(255) NOT NULL DEFAULT '',
				generator VARCHAR(255) NOT NULL DEFAULT '',
				created_at DATETIME(6) NOT NULL,
				payload JSON NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	default:
		return fmt.Errorf("dialect %q: %w", s.dialect, domain.ErrUnsupportedKind)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create mbt_sequences table: %w", err)
	}
	return nil
}

func (s *Store) upsert() string {
	if s.dialect == MySQL {
		return `INSERT INTO mbt_sequences (id, model, generator, created_at, payload)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE model = VALUES(model), generator = VALUES(generator),
				created_at = VALUES(created_at), payload = VALUES(payload)`
	}
	return `INSERT INTO mbt_sequences (id, model, generator, created_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET model = excluded.model, generator = excluded.generator,
			created_at = excluded.created_at, payload = excluded.payload`
}

// Save implements ports.SequenceStore.
func (s *Store) Save(ctx context.Context, seq *domain.Sequence) error {
	data, err := json.Marshal(payload{Steps: seq.Steps, Statistics: seq.Statistics, Sealed: seq.Sealed})
	if err != nil {
		return fmt.Errorf("failed to marshal sequence: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.upsert(), seq.ID, seq.Model, seq.Generator, seq.CreatedAt.UTC(), string(data)); err != nil {
		return fmt.Errorf("failed to save sequence %q: %w", seq.ID, err)
	}
	return nil
}

// Load implements ports.SequenceStore.
func (s *Store) Load(ctx context.Context, id string) (*domain.Sequence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT model, generator, created_at, payload FROM mbt_sequences WHERE id = ?`, id)

	seq := &domain.Sequence{ID: id}
	var raw []byte
	if err := row.Scan(&seq.Model, &seq.Generator, &seq.CreatedAt, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSequenceNotFound, id)
		}
		return nil, fmt.Errorf("failed to load sequence %q: %w", id, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sequence %q: %w", id, err)
	}
	seq.Steps = p.Steps
	if seq.Steps == nil {
		seq.Steps = []domain.Step{}
	}
	seq.Statistics = p.Statistics
	seq.Sealed = p.Sealed
	return seq, nil
}

// Delete implements ports.SequenceStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mbt_sequences WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sequence %q: %w", id, err)
	}
	return nil
}

// List implements ports.SequenceStore. IDs are returned in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM mbt_sequences ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
