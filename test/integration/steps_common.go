package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/passkeep/pkg/backend"
	"github.com/doodlesbykumbi/passkeep/pkg/config"
	"github.com/doodlesbykumbi/passkeep/pkg/manager"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

var scenarioSeq atomic.Int64

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc      *TestContext
	kind    store.Kind
	manager *manager.Manager
	closeFn backend.CloseFunc
	lastErr error
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.closeFn != nil {
			_ = s.closeFn()
		}
		return ctx, err
	})

	sc.Step(`^a fresh "([^"]*)" password store$`, s.aFreshPasswordStore)

	sc.Step(`^I add the password "([^"]*)" for "([^"]*)"$`, s.iAddThePasswordFor)
	sc.Step(`^I delete the password for "([^"]*)"$`, s.iDeleteThePasswordFor)

	sc.Step(`^the password for "([^"]*)" should be "([^"]*)"$`, s.thePasswordForShouldBe)
	sc.Step(`^the password for "([^"]*)" should be absent$`, s.thePasswordForShouldBeAbsent)
	sc.Step(`^the stored account names should be "([^"]*)"$`, s.theStoredAccountNamesShouldBe)
	sc.Step(`^there should be no stored accounts$`, s.thereShouldBeNoStoredAccounts)
	sc.Step(`^the operation should fail with a duplicate account error$`, s.theOperationShouldFailWithDuplicate)
	sc.Step(`^the operation should succeed$`, s.theOperationShouldSucceed)
}

func (s *StepsContext) aFreshPasswordStore(ctx context.Context, name string) error {
	kind, err := store.ParseKind(name)
	if err != nil {
		return err
	}
	seq := scenarioSeq.Add(1)
	table := fmt.Sprintf("accounts_%d", seq)

	cfg := &config.PasskeepConfig{
		Backend:  kind.String(),
		Timeout:  30,
		Table:    table,
		LogLevel: "warn",
	}
	switch kind {
	case store.KindFile:
		cfg.FilePath = filepath.Join(s.tc.TempDir, table, "passwords.json")
	case store.KindSQLite:
		cfg.DatabaseURL = filepath.Join(s.tc.TempDir, table+".db")
	case store.KindPostgres, store.KindGorm:
		cfg.DatabaseURL = s.tc.PostgresURL
	case store.KindMySQL:
		cfg.DatabaseURL = s.tc.MySQLDSN
	case store.KindMongo:
		cfg.MongoURI = s.tc.MongoURI
		cfg.MongoDatabase = "passkeep_test"
		cfg.MongoCollection = table
	}
	if cfg.DatabaseURL == "" && cfg.MongoURI == "" && cfg.FilePath == "" {
		return godog.ErrSkip
	}

	storage, closeFn, err := backend.Open(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", kind, err)
	}
	s.kind = kind
	s.closeFn = closeFn
	s.manager = manager.New(storage, slog.Default())
	return nil
}

func (s *StepsContext) iAddThePasswordFor(ctx context.Context, password, name string) error {
	s.lastErr = s.manager.AddPassword(ctx, name, password)
	return nil
}

func (s *StepsContext) iDeleteThePasswordFor(ctx context.Context, name string) error {
	s.lastErr = s.manager.DeletePassword(ctx, name)
	return nil
}

func (s *StepsContext) thePasswordForShouldBe(ctx context.Context, name, expected string) error {
	password, ok, err := s.manager.GetPassword(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expected a password for %q, got none", name)
	}
	if password != expected {
		return fmt.Errorf("expected password %q for %q, got %q", expected, name, password)
	}
	return nil
}

func (s *StepsContext) thePasswordForShouldBeAbsent(ctx context.Context, name string) error {
	_, ok, err := s.manager.GetPassword(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("expected no password for %q", name)
	}
	return nil
}

func (s *StepsContext) theStoredAccountNamesShouldBe(ctx context.Context, expected string) error {
	names, err := s.manager.ListPasswords(ctx)
	if err != nil {
		return err
	}
	sort.Strings(names)
	got := strings.Join(names, ",")
	if got != expected {
		return fmt.Errorf("expected account names %q, got %q", expected, got)
	}
	return nil
}

func (s *StepsContext) thereShouldBeNoStoredAccounts(ctx context.Context) error {
	names, err := s.manager.ListPasswords(ctx)
	if err != nil {
		return err
	}
	if len(names) != 0 {
		return fmt.Errorf("expected no accounts on %s, got %v", s.kind, names)
	}
	return nil
}

func (s *StepsContext) theOperationShouldFailWithDuplicate() error {
	if !errors.Is(s.lastErr, manager.ErrDuplicateAccount) {
		return fmt.Errorf("expected a duplicate account error, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) theOperationShouldSucceed() error {
	if s.lastErr != nil {
		return fmt.Errorf("expected success, got %v", s.lastErr)
	}
	return nil
}
