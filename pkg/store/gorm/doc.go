// Package gorm provides a GORM-based implementation of store.Storage.
//
// It keeps the same table layout as pkg/store/sql, so either package can
// read a table the other one wrote. Connections come from pkg/db.
package gorm
