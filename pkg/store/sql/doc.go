// Package sqlstore stores accounts in a relational table through database/sql.
//
// # Schema
//
// Each store owns one table, created on first write:
//
//	CREATE TABLE IF NOT EXISTS passwords (name TEXT PRIMARY KEY, password TEXT)
//
// The table name is chosen by the caller. It must be a plain identifier
// (see store.ValidateIdentifier) and is always quoted in statements.
//
// # Dialects
//
//   - Postgres: github.com/lib/pq, $n placeholders
//   - MySQL: github.com/go-sql-driver/mysql, ? placeholders, binary collation on name
//   - SQLite: modernc.org/sqlite, ? placeholders
//
// # Usage
//
//	s, err := sqlstore.Open(ctx, store.KindPostgres, os.Getenv("DATABASE_URL"), "passwords")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// SaveAll replaces the table contents inside one transaction. Update locks
// the table for the duration of its read-modify-write.
package sqlstore
