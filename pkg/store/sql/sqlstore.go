package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// Ensure Store implements store.Storage and store.Updater
var (
	_ store.Storage = (*Store)(nil)
	_ store.Updater = (*Store)(nil)
)

// Store implements store.Storage on a SQL table
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	logger  *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over an existing connection pool.
func New(db *sql.DB, dialect Dialect, table string, opts ...Option) (*Store, error) {
	if err := store.ValidateIdentifier(table); err != nil {
		return nil, err
	}
	s := &Store{
		db:      db,
		dialect: dialect,
		table:   dialect.quote(table),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open connects to the database at dsn and returns a Store for table.
// The connection is verified before returning.
func Open(ctx context.Context, kind store.Kind, dsn, table string, opts ...Option) (*Store, error) {
	dialect, err := DialectFor(kind)
	if err != nil {
		return nil, err
	}
	if err := store.ValidateIdentifier(table); err != nil {
		return nil, err
	}
	if kind == store.KindSQLite {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, store.Unavailable(kind, "open", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	if kind == store.KindSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, store.Unavailable(kind, "open", err)
	}
	return New(db, dialect, table, opts...)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadAll returns every row ordered by name. A missing table yields no rows.
func (s *Store) LoadAll(ctx context.Context) ([]model.Account, error) {
	return s.loadAll(ctx, s.db)
}

// SaveAll makes the table hold exactly accounts.
func (s *Store) SaveAll(ctx context.Context, accounts []model.Account) error {
	if err := model.Validate(accounts); err != nil {
		return err
	}
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "save", func(tx *sql.Tx) error {
		return s.replaceAll(ctx, tx, accounts)
	})
}

// GetByName returns the named row or nil.
func (s *Store) GetByName(ctx context.Context, name string) (*model.Account, error) {
	query := fmt.Sprintf("SELECT name, password FROM %s WHERE name = %s", s.table, s.dialect.placeholder(1))

	var (
		account  model.Account
		password sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, name).Scan(&account.Name, &password)
	if errors.Is(err, sql.ErrNoRows) || s.dialect.missingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable(s.dialect.Kind, "get", err)
	}
	account.Password = password.String
	return &account, nil
}

// DeleteByName removes the named row if present.
func (s *Store) DeleteByName(ctx context.Context, name string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE name = %s", s.table, s.dialect.placeholder(1))

	res, err := s.db.ExecContext(ctx, query, name)
	if s.dialect.missingTable(err) {
		return nil
	}
	if err != nil {
		return store.Unavailable(s.dialect.Kind, "delete", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("deleted account", "backend", s.dialect.Kind, "removed", n)
	}
	return nil
}

// Update reads, transforms and rewrites the table in one transaction while
// holding a table lock.
func (s *Store) Update(ctx context.Context, fn store.UpdateFunc) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "update", func(tx *sql.Tx) error {
		if err := s.lock(ctx, tx); err != nil {
			return err
		}
		current, err := s.loadAll(ctx, tx)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := model.Validate(next); err != nil {
			return err
		}
		return s.replaceAll(ctx, tx, next)
	})
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) loadAll(ctx context.Context, q querier) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT name, password FROM %s ORDER BY name", s.table))
	if s.dialect.missingTable(err) {
		return []model.Account{}, nil
	}
	if err != nil {
		return nil, store.Unavailable(s.dialect.Kind, "load", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var (
			account  model.Account
			password sql.NullString
		)
		if err := rows.Scan(&account.Name, &password); err != nil {
			return nil, store.Corrupt(s.dialect.Kind, "load", err)
		}
		account.Password = password.String
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(s.dialect.Kind, "load", err)
	}

	s.logger.Debug("loaded accounts", "backend", s.dialect.Kind, "count", len(accounts))
	return accounts, nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(s.dialect.createTable, s.table)); err != nil {
		return store.Unavailable(s.dialect.Kind, "create table", err)
	}
	return nil
}

func (s *Store) lock(ctx context.Context, tx *sql.Tx) error {
	stmt := fmt.Sprintf(s.dialect.lockTable, s.table)
	if s.dialect.lockIsQuery {
		rows, err := tx.QueryContext(ctx, stmt)
		if err != nil {
			return store.Unavailable(s.dialect.Kind, "lock", err)
		}
		return rows.Close()
	}
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return store.Unavailable(s.dialect.Kind, "lock", err)
	}
	return nil
}

// pruneBatch bounds the placeholders of one batched DELETE, well below the
// parameter limits of MySQL and SQLite.
const pruneBatch = 500

// replaceAll upserts every account and deletes rows whose name is not in accounts.
func (s *Store) replaceAll(ctx context.Context, tx *sql.Tx, accounts []model.Account) error {
	upsert := fmt.Sprintf(s.dialect.upsert, s.table)
	for _, a := range accounts {
		if _, err := tx.ExecContext(ctx, upsert, a.Name, a.Password); err != nil {
			return store.Unavailable(s.dialect.Kind, "save", err)
		}
	}
	if err := s.prune(ctx, tx, model.Names(accounts)); err != nil {
		return store.Unavailable(s.dialect.Kind, "save", err)
	}

	s.logger.Debug("saved accounts", "backend", s.dialect.Kind, "count", len(accounts))
	return nil
}

// prune removes every row whose name is not in keep.
func (s *Store) prune(ctx context.Context, tx *sql.Tx, keep []string) error {
	if len(keep) == 0 {
		_, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.table))
		return err
	}
	if s.dialect.pruneArray != "" {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(s.dialect.pruneArray, s.table), pq.Array(keep))
		return err
	}

	stale, err := s.staleNames(ctx, tx, keep)
	if err != nil {
		return err
	}
	for start := 0; start < len(stale); start += pruneBatch {
		end := min(start+pruneBatch, len(stale))
		batch := stale[start:end]

		args := make([]any, len(batch))
		for i, name := range batch {
			args[i] = name
		}
		query := fmt.Sprintf("DELETE FROM %s WHERE name IN (%s)", s.table, s.dialect.placeholders(1, len(batch)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// staleNames returns the stored names missing from keep.
func (s *Store) staleNames(ctx context.Context, tx *sql.Tx, keep []string) ([]string, error) {
	wanted := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		wanted[name] = struct{}{}
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT name FROM %s", s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if _, ok := wanted[name]; !ok {
			stale = append(stale, name)
		}
	}
	return stale, rows.Err()
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Unavailable(s.dialect.Kind, op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return store.Unavailable(s.dialect.Kind, op, err)
	}
	return nil
}
