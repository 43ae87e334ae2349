package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		accounts []Account
		wantErr  error
	}{
		{name: "nil set", accounts: nil},
		{name: "unique names", accounts: []Account{{Name: "a", Password: "1"}, {Name: "A", Password: "2"}}},
		{name: "empty name", accounts: []Account{{Name: "", Password: "x"}}, wantErr: ErrEmptyName},
		{name: "duplicate name", accounts: []Account{{Name: "a"}, {Name: "a"}}, wantErr: ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.accounts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFind(t *testing.T) {
	accounts := []Account{{Name: "github", Password: "s3cret"}, {Name: "mail", Password: "pw"}}

	found := Find(accounts, "mail")
	require.NotNil(t, found)
	assert.Equal(t, "pw", found.Password)

	found.Password = "changed"
	assert.Equal(t, "pw", accounts[1].Password, "Find must return a copy")

	assert.Nil(t, Find(accounts, "Mail"))
	assert.Nil(t, Find(nil, "mail"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{}, Names(nil))
	assert.Equal(t, []string{"b", "a"}, Names([]Account{{Name: "b"}, {Name: "a"}}))
}

func TestRemove(t *testing.T) {
	accounts := []Account{{Name: "a"}, {Name: "b"}}

	out, removed := Remove(accounts, "a")
	assert.True(t, removed)
	assert.Equal(t, []Account{{Name: "b"}}, out)

	out, removed = Remove(accounts, "zzz")
	assert.False(t, removed)
	assert.Equal(t, accounts, out)
}
