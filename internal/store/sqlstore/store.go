// Package sqlstore implements store.Store over database/sql for SQLite
// (modernc.org/sqlite) and PostgreSQL (pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/samber/oops"
	_ "modernc.org/sqlite"

	"github.com/notekeeper/notekeeper-server/internal/store"
)

// timeLayout is fixed-width so that stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqlitePragmas are applied to every pooled connection through the DSN.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// Options configures Open.
type Options struct {
	Driver       string // sqlite (default) or postgres
	DSN          string // file path for sqlite, URL for postgres
	MaxOpenConns int
	// Migrate applies pending schema migrations before the pool is opened.
	Migrate bool
	Logger  *slog.Logger
	// Now overrides the clock used for created_at/updated_at.
	Now func() time.Time
}

// Store is the database/sql backed store.Store.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	now     func() time.Time
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*txn)(nil)
)

// Open connects to the database described by opts.
func Open(ctx context.Context, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").Wrap(err)
	}
	if opts.DSN == "" {
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", d.name).Errorf("database dsn is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Migrate {
		if err := Migrate(d.name, opts.DSN); err != nil {
			return nil, err
		}
	}

	dsn := opts.DSN
	if d.name == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", d.name).Wrap(err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(1, maxOpen/2))
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", d.name).Wrap(err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger.Debug("database opened", "driver", d.name, "max_open_conns", maxOpen)

	return &Store{db: db, dialect: d, logger: logger, now: now}, nil
}

// sqliteDSN turns a file path into a modernc DSN carrying the pragmas.
func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqlitePragmas
}

// Dialect returns the configured driver name.
func (s *Store) Dialect() string { return s.dialect.name }

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back on error or panic.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txn{tx: sqlTx, d: s.dialect, now: s.now}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txn implements store.Tx on a *sql.Tx.
type txn struct {
	tx  *sql.Tx
	d   dialect
	now func() time.Time
}

func (t *txn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.d.rebind(query), args...)
}

func (t *txn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.d.rebind(query), args...)
}

func (t *txn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.d.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id and returns the new id.
func (t *txn) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := t.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// deleteRows runs a DELETE and returns the number of rows removed.
func (t *txn) deleteRows(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// deleteOne runs a DELETE that must remove exactly one row.
func (t *txn) deleteOne(ctx context.Context, query string, args ...any) error {
	n, err := t.deleteRows(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// updateOne runs an UPDATE that must touch exactly one row.
func (t *txn) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := t.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// owner runs a single-column user_id lookup.
func (t *txn) owner(ctx context.Context, query string, id int64) (int64, error) {
	var userID int64
	err := t.queryRow(ctx, query, id).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (t *txn) timestamp() time.Time {
	return t.now().UTC()
}

// formatTime formats a time.Time for storage.
func formatTime(ts time.Time) string {
	return ts.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type scanner interface{ Scan(dest ...any) error }
