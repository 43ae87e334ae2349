package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// DefaultFileMode is the permission of the written document
const DefaultFileMode fs.FileMode = 0o600

// Ensure Store implements store.Storage and store.Updater
var (
	_ store.Storage = (*Store)(nil)
	_ store.Updater = (*Store)(nil)
)

// Store implements store.Storage on a JSON file
type Store struct {
	path    string
	mode    fs.FileMode
	lenient bool
	logger  *slog.Logger

	// guards the lock on platforms without flock
	mu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithLenientLoad treats a malformed document as empty instead of failing
// with store.ErrStorageCorrupt. A warning is logged either way.
func WithLenientLoad() Option {
	return func(s *Store) { s.lenient = true }
}

// WithFileMode sets the permission bits of the written document.
func WithFileMode(mode fs.FileMode) Option {
	return func(s *Store) { s.mode = mode }
}

// WithLogger sets the logger used for debug and warning output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store backed by the file at path. The file is not touched
// until the first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		mode:   DefaultFileMode,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the JSON document.
func (s *Store) Path() string {
	return s.path
}

// LoadAll reads every account from the document.
func (s *Store) LoadAll(ctx context.Context) ([]model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

// SaveAll replaces the document with accounts.
func (s *Store) SaveAll(ctx context.Context, accounts []model.Account) error {
	if err := model.Validate(accounts); err != nil {
		return err
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.write(accounts)
}

// GetByName returns the named account or nil.
func (s *Store) GetByName(ctx context.Context, name string) (*model.Account, error) {
	accounts, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return model.Find(accounts, name), nil
}

// DeleteByName removes the named account. The document is not rewritten when
// the name is absent.
func (s *Store) DeleteByName(ctx context.Context, name string) error {
	return s.update(ctx, func(accounts []model.Account) ([]model.Account, bool, error) {
		remaining, removed := model.Remove(accounts, name)
		return remaining, removed, nil
	})
}

// Update runs fn on the current accounts and writes its result while holding
// the file lock.
func (s *Store) Update(ctx context.Context, fn store.UpdateFunc) error {
	return s.update(ctx, func(accounts []model.Account) ([]model.Account, bool, error) {
		next, err := fn(accounts)
		return next, true, err
	})
}

func (s *Store) update(ctx context.Context, fn func([]model.Account) ([]model.Account, bool, error)) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	next, changed, err := fn(current)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := model.Validate(next); err != nil {
		return err
	}
	return s.write(next)
}

func (s *Store) load() ([]model.Account, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("password file does not exist yet", "path", s.path)
		return []model.Account{}, nil
	}
	if err != nil {
		return nil, store.Unavailable(store.KindFile, "load", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Account{}, nil
	}

	var accounts []model.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return s.corrupt(err)
	}
	if err := model.Validate(accounts); err != nil {
		return s.corrupt(err)
	}
	if accounts == nil {
		accounts = []model.Account{}
	}

	s.logger.Debug("loaded accounts", "path", s.path, "count", len(accounts))
	return accounts, nil
}

func (s *Store) corrupt(err error) ([]model.Account, error) {
	s.logger.Warn("password file is malformed", "path", s.path, "error", err, "lenient", s.lenient)
	if s.lenient {
		return []model.Account{}, nil
	}
	return nil, store.Corrupt(store.KindFile, "load", err)
}

func (s *Store) write(accounts []model.Account) error {
	if accounts == nil {
		accounts = []model.Account{}
	}
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return store.Unavailable(store.KindFile, "save", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return store.Unavailable(store.KindFile, "save", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return store.Unavailable(store.KindFile, "save", err)
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return store.Unavailable(store.KindFile, "save", err)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(s.mode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return store.Unavailable(store.KindFile, "save", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return store.Unavailable(store.KindFile, "save", err)
	}

	s.logger.Debug("saved accounts", "path", s.path, "count", len(accounts))
	return nil
}
