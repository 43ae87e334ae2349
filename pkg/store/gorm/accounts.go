package gorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// Ensure AccountsStore implements store.Storage and store.Updater
var (
	_ store.Storage = (*AccountsStore)(nil)
	_ store.Updater = (*AccountsStore)(nil)
)

// undefined_table
const pgUndefinedTable = "42P01"

// AccountsStore implements store.Storage using GORM
type AccountsStore struct {
	db     *gorm.DB
	table  string
	quoted string
	logger *slog.Logger
}

// NewAccountsStore creates a new AccountsStore on table
func NewAccountsStore(db *gorm.DB, table string, logger *slog.Logger) (*AccountsStore, error) {
	if err := store.ValidateIdentifier(table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountsStore{
		db:     db,
		table:  table,
		quoted: `"` + table + `"`,
		logger: logger,
	}, nil
}

// LoadAll returns every row ordered by name.
func (s *AccountsStore) LoadAll(ctx context.Context) ([]model.Account, error) {
	return s.loadAll(s.db.WithContext(ctx))
}

// SaveAll makes the table hold exactly accounts.
func (s *AccountsStore) SaveAll(ctx context.Context, accounts []model.Account) error {
	if err := model.Validate(accounts); err != nil {
		return err
	}
	return s.transaction(ctx, "save", func(tx *gorm.DB) error {
		return s.replaceAll(tx, accounts)
	})
}

// GetByName returns the named row or nil.
func (s *AccountsStore) GetByName(ctx context.Context, name string) (*model.Account, error) {
	var rows []model.Account
	err := s.db.WithContext(ctx).Table(s.table).Where("name = ?", name).Limit(1).Find(&rows).Error
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable(store.KindGorm, "get", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteByName removes the named row if present.
func (s *AccountsStore) DeleteByName(ctx context.Context, name string) error {
	tx := s.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE name = ?", s.quoted), name)
	if isMissingTable(tx.Error) {
		return nil
	}
	if tx.Error != nil {
		return store.Unavailable(store.KindGorm, "delete", tx.Error)
	}
	s.logger.Debug("deleted account", "backend", store.KindGorm, "removed", tx.RowsAffected)
	return nil
}

// Update reads, transforms and rewrites the table in one transaction while
// holding a table lock.
func (s *AccountsStore) Update(ctx context.Context, fn store.UpdateFunc) error {
	return s.transaction(ctx, "update", func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", s.quoted)).Error; err != nil {
			return store.Unavailable(store.KindGorm, "lock", err)
		}
		current, err := s.loadAll(tx)
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
		return s.replaceAll(tx, next)
	})
}

func (s *AccountsStore) loadAll(db *gorm.DB) ([]model.Account, error) {
	accounts := []model.Account{}
	err := db.Table(s.table).Order("name").Find(&accounts).Error
	if isMissingTable(err) {
		return []model.Account{}, nil
	}
	if err != nil {
		return nil, store.Unavailable(store.KindGorm, "load", err)
	}
	s.logger.Debug("loaded accounts", "backend", store.KindGorm, "count", len(accounts))
	return accounts, nil
}

func (s *AccountsStore) replaceAll(tx *gorm.DB, accounts []model.Account) error {
	upsert := fmt.Sprintf("INSERT INTO %s (name, password) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET password = EXCLUDED.password", s.quoted)
	for _, a := range accounts {
		if err := tx.Exec(upsert, a.Name, a.Password).Error; err != nil {
			return store.Unavailable(store.KindGorm, "save", err)
		}
	}

	var err error
	if len(accounts) == 0 {
		err = tx.Exec(fmt.Sprintf("DELETE FROM %s", s.quoted)).Error
	} else {
		err = tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE name <> ALL(?::text[])", s.quoted), pq.Array(model.Names(accounts))).Error
	}
	if err != nil {
		return store.Unavailable(store.KindGorm, "save", err)
	}

	s.logger.Debug("saved accounts", "backend", store.KindGorm, "count", len(accounts))
	return nil
}

// transaction creates the table if needed, then runs work in a transaction.
// Errors returned by work pass through untouched.
func (s *AccountsStore) transaction(ctx context.Context, op string, work func(tx *gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, password TEXT)", s.quoted)).Error; err != nil {
		return store.Unavailable(store.KindGorm, "create table", err)
	}

	var workErr error
	err := db.Transaction(func(tx *gorm.DB) error {
		workErr = work(tx)
		return workErr
	})
	if workErr != nil {
		return workErr
	}
	if err != nil {
		return store.Unavailable(store.KindGorm, op, err)
	}
	return nil
}

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
