package gorm

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return db, mock
}

func newTestStore(t *testing.T) (*AccountsStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := setupTestDB(t)
	s, err := NewAccountsStore(db, "passwords", nil)
	require.NoError(t, err)
	return s, mock
}

func TestNewAccountsStore_InvalidTable(t *testing.T) {
	db, _ := setupTestDB(t)

	_, err := NewAccountsStore(db, "passwords; DROP TABLE x", nil)
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
}

func TestAccountsStore_LoadAll(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "passwords" ORDER BY name`)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "password"}).
			AddRow("bank", "1234").
			AddRow("github", "s3cret"))

	accounts, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Account{{Name: "bank", Password: "1234"}, {Name: "github", Password: "s3cret"}}, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsStore_MissingTable(t *testing.T) {
	s, mock := newTestStore(t)
	missing := &pgconn.PgError{Code: "42P01", Message: `relation "passwords" does not exist`}

	mock.ExpectQuery(`SELECT \* FROM "passwords" ORDER BY name`).WillReturnError(missing)
	mock.ExpectQuery(`SELECT \* FROM "passwords" WHERE name = \$1 LIMIT 1`).WillReturnError(missing)
	mock.ExpectExec(`DELETE FROM "passwords" WHERE name = \$1`).WillReturnError(missing)

	accounts, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)

	found, err := s.GetByName(context.Background(), "github")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.NoError(t, s.DeleteByName(context.Background(), "github"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsStore_LoadAllUnavailable(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT \* FROM "passwords"`).WillReturnError(errors.New("connection reset by peer"))

	_, err := s.LoadAll(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestAccountsStore_GetByName(t *testing.T) {
	tests := []struct {
		name      string
		rows      *sqlmock.Rows
		wantFound bool
	}{
		{
			name:      "existing account",
			rows:      sqlmock.NewRows([]string{"name", "password"}).AddRow("github", "s3cret"),
			wantFound: true,
		},
		{
			name:      "missing account",
			rows:      sqlmock.NewRows([]string{"name", "password"}),
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStore(t)

			mock.ExpectQuery(`SELECT \* FROM "passwords" WHERE name = \$1 LIMIT 1`).
				WithArgs("github").
				WillReturnRows(tt.rows)

			found, err := s.GetByName(context.Background(), "github")
			require.NoError(t, err)
			if tt.wantFound {
				require.NotNil(t, found)
				assert.Equal(t, "s3cret", found.Password)
			} else {
				assert.Nil(t, found)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountsStore_SaveAll(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "passwords"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "passwords" \(name, password\) VALUES \(\$1, \$2\) ON CONFLICT`).
		WithArgs("a", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "passwords" WHERE name <> ALL\(\$1::text\[\]\)`).
		WithArgs(`{"a"}`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.SaveAll(context.Background(), []model.Account{{Name: "a", Password: "1"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsStore_SaveAllFailureRollsBack(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "passwords"`).WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	err := s.SaveAll(context.Background(), []model.Account{{Name: "a", Password: "1"}})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountsStore_Update(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(`LOCK TABLE "passwords" IN SHARE ROW EXCLUSIVE MODE`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "passwords" ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "password"}).AddRow("a", "1"))
	mock.ExpectRollback()

	dup := errors.New("already there")
	err := s.Update(context.Background(), func(accounts []model.Account) ([]model.Account, error) {
		if model.Find(accounts, "a") != nil {
			return nil, dup
		}
		return accounts, nil
	})
	assert.ErrorIs(t, err, dup)
	assert.NotErrorIs(t, err, store.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
