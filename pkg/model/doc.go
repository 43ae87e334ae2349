// Package model defines the records persisted by passkeep.
//
// # Core Models
//
//   - Account: an account name and its secret
//
// The same struct is used by every backend. Field names are fixed across
// media:
//
//   - JSON file: {"name": ..., "password": ...}
//   - MongoDB document: passwords[].name, passwords[].password
//   - SQL table: columns name, password
//
// Secrets are stored as given. No backend encrypts them.
package model
