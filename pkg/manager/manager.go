package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// ErrDuplicateAccount is matched by errors returned when adding a name that already exists
var ErrDuplicateAccount = errors.New("account already exists")

// DuplicateAccountError reports the name that was already taken
type DuplicateAccountError struct {
	Name string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("an account with the name %q already exists", e.Name)
}

// Is makes errors.Is(err, ErrDuplicateAccount) succeed.
func (e *DuplicateAccountError) Is(target error) bool {
	return target == ErrDuplicateAccount
}

// Manager enforces name uniqueness on top of a store.Storage
type Manager struct {
	storage store.Storage
	logger  *slog.Logger
}

// New creates a Manager over storage. A nil logger uses slog.Default().
func New(storage store.Storage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{storage: storage, logger: logger}
}

// AddPassword stores a new account. It fails with ErrDuplicateAccount when
// name is already present and leaves the stored collection untouched.
func (m *Manager) AddPassword(ctx context.Context, name, password string) error {
	if name == "" {
		return model.ErrEmptyName
	}

	add := func(accounts []model.Account) ([]model.Account, error) {
		if model.Find(accounts, name) != nil {
			return nil, &DuplicateAccountError{Name: name}
		}
		return append(accounts, model.Account{Name: name, Password: password}), nil
	}

	var err error
	if u, ok := m.storage.(store.Updater); ok {
		err = u.Update(ctx, add)
	} else {
		err = m.loadModifySave(ctx, add)
	}
	if err != nil {
		return err
	}

	m.logger.Debug("account added", "name", name)
	return nil
}

// GetPassword returns the secret for name. The boolean is false when the
// account does not exist.
func (m *Manager) GetPassword(ctx context.Context, name string) (string, bool, error) {
	account, err := m.storage.GetByName(ctx, name)
	if err != nil {
		return "", false, err
	}
	if account == nil {
		return "", false, nil
	}
	return account.Password, true, nil
}

// DeletePassword removes name. Removing a missing name succeeds.
func (m *Manager) DeletePassword(ctx context.Context, name string) error {
	if err := m.storage.DeleteByName(ctx, name); err != nil {
		return err
	}
	m.logger.Debug("account deleted", "name", name)
	return nil
}

// ListPasswords returns the stored account names. The result is never nil.
func (m *Manager) ListPasswords(ctx context.Context) ([]string, error) {
	accounts, err := m.storage.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return model.Names(accounts), nil
}

// loadModifySave is the fallback for backends without store.Updater.
// Concurrent writers can interleave between the load and the save.
func (m *Manager) loadModifySave(ctx context.Context, fn store.UpdateFunc) error {
	accounts, err := m.storage.LoadAll(ctx)
	if err != nil {
		return err
	}
	next, err := fn(accounts)
	if err != nil {
		return err
	}
	return m.storage.SaveAll(ctx, next)
}
