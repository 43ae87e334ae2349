package store

import (
	"context"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
)

// Storage abstracts persistence of the account collection.
type Storage interface {
	// LoadAll returns every stored account. A medium with no data yields an
	// empty slice and no error.
	LoadAll(ctx context.Context) ([]model.Account, error)

	// SaveAll replaces the stored collection with accounts.
	SaveAll(ctx context.Context, accounts []model.Account) error

	// GetByName returns the named account, or nil when it does not exist.
	GetByName(ctx context.Context, name string) (*model.Account, error)

	// DeleteByName removes the named account. Deleting a missing name is a no-op.
	DeleteByName(ctx context.Context, name string) error
}

// UpdateFunc transforms the current collection into the one to persist.
// Returning an error aborts the update and leaves the medium unchanged.
type UpdateFunc func(accounts []model.Account) ([]model.Account, error)

// Updater is implemented by backends that can run a read-modify-write of the
// collection while holding their own lock.
type Updater interface {
	Update(ctx context.Context, fn UpdateFunc) error
}
