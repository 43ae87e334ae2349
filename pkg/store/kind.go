package store

import (
	"fmt"
	"strings"
)

// Kind identifies a storage backend
type Kind string

const (
	KindFile     Kind = "file"
	KindMongo    Kind = "mongodb"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
	KindGorm     Kind = "gorm"
)

// Kinds lists every supported backend in display order.
func Kinds() []Kind {
	return []Kind{KindFile, KindMongo, KindPostgres, KindMySQL, KindSQLite, KindGorm}
}

func (k Kind) String() string {
	return string(k)
}

// IsRelational reports whether the backend stores accounts in a SQL table.
func (k Kind) IsRelational() bool {
	switch k {
	case KindPostgres, KindMySQL, KindSQLite, KindGorm:
		return true
	}
	return false
}

// ParseKind resolves a backend name. "mongo" is accepted as an alias for "mongodb".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "mongo" {
		return KindMongo, nil
	}
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return "", fmt.Errorf("unknown backend %q (want one of %s)", s, strings.Join(names, ", "))
}
