// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Pragmas are applied through the DSN so every pooled connection gets them,
// not just the first one. _txlock=immediate takes the write lock at BEGIN,
// which serialises concurrent rename/delete transactions instead of failing
// them at their first write.
const dsnOptions = "_pragma=foreign_keys(1)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_txlock=immediate"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements store.Queries over either the pool or an open transaction.
type queries struct {
	q querier
}

// Store provides SQLite-backed persistence for the catalog.
type Store struct {
	*queries
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the SQLite database at path and applies pending migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?"+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	version, err := migrateUp(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("database migrated", "path", path, "version", version)

	return &Store{
		queries: &queries{q: db},
		db:      db,
		logger:  logger,
	}, nil
}

// migrateUp applies every embedded migration not yet recorded in the database.
// The migrate instance is not closed: its database driver would close db.
func migrateUp(db *sql.DB) (uint, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("database is dirty at migration version %d", version)
	}
	return version, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside one write transaction.
func (s *Store) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}

	// A failed COMMIT leaves the SQLite transaction open on the pooled
	// connection, so deferred references are checked while Rollback still works.
	if err := checkGameReferences(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// checkGameReferences fails when any game names a genre or publisher that
// no longer exists.
func checkGameReferences(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check(games)")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var (
			table, parent string
			rowid         sql.NullInt64
			fkid          int
		)
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("scan foreign key check: %w", err)
		}
		return store.ErrDanglingReference.WithMessage(fmt.Sprintf("a game still references a missing %s row", parent))
	}
	return rows.Err()
}

// categoryTable returns the table holding records of a category kind.
func categoryTable(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindGenre:
		return "genres", nil
	case domain.KindPublisher:
		return "publishers", nil
	default:
		return "", fmt.Errorf("kind %q is not a category", kind)
	}
}

// gameColumn returns the games column that references a category kind by name.
func gameColumn(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindGenre:
		return "genre_name", nil
	case domain.KindPublisher:
		return "publisher_name", nil
	default:
		return "", fmt.Errorf("kind %q is not a category", kind)
	}
}

// nameTable returns the table whose name column forms a kind's namespace.
func nameTable(kind domain.Kind) (string, error) {
	if kind == domain.KindGame {
		return "games", nil
	}
	return categoryTable(kind)
}

// mapConstraintError converts SQLite constraint failures to store errors.
// Any other error is returned unchanged.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return store.ErrAlreadyExists.WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrDanglingReference.WithCause(err)
	default:
		return err
	}
}

// checkAffected returns ErrNotFound when a write touched no rows.
func checkAffected(res sql.Result, notFound *store.Error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullDate stores an optional calendar date as YYYY-MM-DD.
func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(domain.DateLayout), Valid: true}
}

// parseNullableDate reads a column written by nullDate.
func parseNullableDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	return domain.ParseDate(s.String)
}
