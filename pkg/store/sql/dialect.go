package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// Dialect captures the statement differences between SQL engines
type Dialect struct {
	// Kind is the backend this dialect serves
	Kind store.Kind
	// Driver is the database/sql driver name
	Driver string

	placeholder  func(n int) string
	quote        func(ident string) string
	createTable  string
	upsert       string
	lockTable    string
	lockIsQuery  bool
	missingTable func(err error) bool
	// pruneArray deletes rows absent from one array parameter. Dialects
	// without arrays prune in batches instead.
	pruneArray string
}

// Postgres is the dialect for PostgreSQL via lib/pq
var Postgres = Dialect{
	Kind:        store.KindPostgres,
	Driver:      "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	quote:       pq.QuoteIdentifier,
	createTable: "CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, password TEXT)",
	upsert:      "INSERT INTO %s (name, password) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET password = EXCLUDED.password",
	lockTable:   "LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE",
	pruneArray:  "DELETE FROM %s WHERE name <> ALL($1::text[])",
	missingTable: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "42P01"
	},
}

// MySQL is the dialect for MySQL and MariaDB via go-sql-driver/mysql
var MySQL = Dialect{
	Kind:        store.KindMySQL,
	Driver:      "mysql",
	placeholder: func(int) string { return "?" },
	quote:       func(ident string) string { return "`" + strings.ReplaceAll(ident, "`", "``") + "`" },
	createTable: "CREATE TABLE IF NOT EXISTS %s (name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL PRIMARY KEY, password TEXT)",
	upsert:      "INSERT INTO %s (name, password) VALUES (?, ?) ON DUPLICATE KEY UPDATE password = VALUES(password)",
	lockTable:   "SELECT name FROM %s FOR UPDATE",
	lockIsQuery: true,
	missingTable: func(err error) bool {
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == 1146
	},
}

// SQLite is the dialect for SQLite via modernc.org/sqlite
var SQLite = Dialect{
	Kind:        store.KindSQLite,
	Driver:      "sqlite",
	placeholder: func(int) string { return "?" },
	quote:       func(ident string) string { return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"` },
	createTable: "CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, password TEXT)",
	upsert:      "INSERT INTO %s (name, password) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET password = excluded.password",
	// a no-op write takes the database write lock at the start of the transaction
	lockTable: "DELETE FROM %s WHERE 1 = 0",
	missingTable: func(err error) bool {
		return err != nil && strings.Contains(err.Error(), "no such table")
	},
}

// DialectFor returns the dialect serving kind.
func DialectFor(kind store.Kind) (Dialect, error) {
	switch kind {
	case store.KindPostgres:
		return Postgres, nil
	case store.KindMySQL:
		return MySQL, nil
	case store.KindSQLite:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("backend %q is not served by database/sql", kind)
	}
}

// SQLiteDSN adds the busy timeout and WAL pragmas to a bare SQLite path.
// DSNs that already carry parameters are returned unchanged.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (d Dialect) placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}
