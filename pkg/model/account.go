package model

import (
	"errors"
	"fmt"
)

// ErrEmptyName is returned when an account has no name
var ErrEmptyName = errors.New("account name must not be empty")

// ErrDuplicateName is returned when a record set holds the same name twice
var ErrDuplicateName = errors.New("duplicate account name")

// Account is a single stored credential. Name is the unique, case-sensitive key.
type Account struct {
	Name     string `json:"name" bson:"name" gorm:"column:name;primaryKey"`
	Password string `json:"password" bson:"password" gorm:"column:password"`
}

// Validate checks that every account has a name and that no name repeats.
func Validate(accounts []Account) error {
	seen := make(map[string]struct{}, len(accounts))
	for i, a := range accounts {
		if a.Name == "" {
			return fmt.Errorf("record %d: %w", i, ErrEmptyName)
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// Find returns the account with the given name, or nil.
func Find(accounts []Account, name string) *Account {
	for i := range accounts {
		if accounts[i].Name == name {
			a := accounts[i]
			return &a
		}
	}
	return nil
}

// Names returns the account names in stored order. The result is never nil.
func Names(accounts []Account) []string {
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Name)
	}
	return names
}

// Remove returns accounts without the named entry and whether anything was removed.
func Remove(accounts []Account, name string) ([]Account, bool) {
	out := make([]Account, 0, len(accounts))
	removed := false
	for _, a := range accounts {
		if a.Name == name {
			removed = true
			continue
		}
		out = append(out, a)
	}
	return out, removed
}
