// Package backend builds the store.Storage selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/doodlesbykumbi/passkeep/pkg/config"
	"github.com/doodlesbykumbi/passkeep/pkg/db"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
	"github.com/doodlesbykumbi/passkeep/pkg/store/file"
	gormstore "github.com/doodlesbykumbi/passkeep/pkg/store/gorm"
	"github.com/doodlesbykumbi/passkeep/pkg/store/mongo"
	sqlstore "github.com/doodlesbykumbi/passkeep/pkg/store/sql"
)

// CloseFunc releases whatever Open acquired
type CloseFunc func() error

func noopClose() error { return nil }

// Open validates cfg and returns the configured storage. Callers must call
// the returned CloseFunc when done.
func Open(ctx context.Context, cfg *config.PasskeepConfig, logger *slog.Logger) (store.Storage, CloseFunc, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	kind, _ := cfg.Kind()
	logger = logger.With("backend", kind)

	switch kind {
	case store.KindFile:
		opts := []file.Option{file.WithLogger(logger)}
		if cfg.FileLenient {
			opts = append(opts, file.WithLenientLoad())
		}
		return file.New(cfg.FilePath, opts...), noopClose, nil

	case store.KindMongo:
		s, err := mongo.New(mongo.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Timeout:    cfg.TimeoutDuration(),
		}, mongo.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, noopClose, nil

	case store.KindPostgres, store.KindMySQL, store.KindSQLite:
		ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
		defer cancel()
		s, err := sqlstore.Open(ctx, kind, cfg.DatabaseURL, cfg.Table, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case store.KindGorm:
		database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
		if err != nil {
			return nil, nil, store.Unavailable(kind, "open", err)
		}
		s, err := gormstore.NewAccountsStore(database, cfg.Table, logger)
		if err != nil {
			db.Close(database)
			return nil, nil, err
		}
		return s, func() error { return db.Close(database) }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", kind)
	}
}
