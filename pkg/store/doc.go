// Package store defines the storage contract shared by every passkeep backend.
//
// A backend persists the whole collection of accounts on some medium and
// answers point lookups by name. The manager only ever talks to the
// Storage interface, so backends can be swapped through configuration.
//
// # Available Backends
//
//   - file: JSON document on local disk (pkg/store/file)
//   - mongodb: single document in a MongoDB collection (pkg/store/mongo)
//   - postgres, mysql, sqlite: table over database/sql (pkg/store/sql)
//   - gorm: PostgreSQL table through GORM (pkg/store/gorm)
//
// # Errors
//
// Failures are classified, never swallowed:
//
//	accounts, err := s.LoadAll(ctx)
//	if errors.Is(err, store.ErrStorageCorrupt) {
//	    // stored data exists but cannot be decoded
//	}
//
// A missing medium (no file, no document, no table) is not an error: LoadAll
// returns an empty collection and GetByName returns nil.
package store
