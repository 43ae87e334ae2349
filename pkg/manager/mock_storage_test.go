package manager

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// MockStorage implements store.Storage for testing using testify/mock
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) LoadAll(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockStorage) SaveAll(ctx context.Context, accounts []model.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func (m *MockStorage) GetByName(ctx context.Context, name string) (*model.Account, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockStorage) DeleteByName(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockUpdaterStorage adds store.Updater; Update runs fn against Current
type MockUpdaterStorage struct {
	MockStorage
	Current []model.Account
}

func (m *MockUpdaterStorage) Update(ctx context.Context, fn store.UpdateFunc) error {
	m.Called(ctx)
	next, err := fn(m.Current)
	if err != nil {
		return err
	}
	m.Current = next
	return nil
}
