package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

const (
	DefaultDatabase   = "passkeep"
	DefaultCollection = "passwords"
	DefaultTimeout    = 10 * time.Second
)

// Ensure Store implements store.Storage
var _ store.Storage = (*Store)(nil)

// Config holds MongoDB connection settings
type Config struct {
	// URI is the connection string, e.g. mongodb://localhost:27017
	URI string
	// Database defaults to DefaultDatabase
	Database string
	// Collection defaults to DefaultCollection
	Collection string
	// Timeout bounds server selection and each operation. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// document is the stored shape of the collection's single document. Its _id
// is whatever the server or another writer assigned and is never read.
type document struct {
	Passwords []model.Account `bson:"passwords"`
}

// allDocuments matches the canonical document, whichever it is
func allDocuments() bson.D {
	return bson.D{}
}

func setPasswords(accounts []model.Account) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{{Key: "passwords", Value: accounts}}}}
}

func byName(name string) bson.D {
	return bson.D{{Key: "passwords.name", Value: name}}
}

func pullName(name string) bson.D {
	return bson.D{{Key: "$pull", Value: bson.D{{Key: "passwords", Value: bson.D{{Key: "name", Value: name}}}}}}
}

// Store implements store.Storage on a MongoDB collection
type Store struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store. No connection is made until the first operation.
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Store{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoadAll returns the accounts of the stored document. No document means no accounts.
func (s *Store) LoadAll(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	err := s.withCollection(ctx, "load", func(ctx context.Context, coll *mongo.Collection) error {
		var err error
		accounts, err = s.findOne(ctx, coll, "load", allDocuments())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded accounts", "backend", store.KindMongo, "count", len(accounts))
	return accounts, nil
}

// SaveAll replaces the passwords array, creating the document if needed.
func (s *Store) SaveAll(ctx context.Context, accounts []model.Account) error {
	if err := model.Validate(accounts); err != nil {
		return err
	}
	if accounts == nil {
		accounts = []model.Account{}
	}

	return s.withCollection(ctx, "save", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.UpdateOne(ctx, allDocuments(), setPasswords(accounts), options.UpdateOne().SetUpsert(true))
		if err != nil {
			return classifyWrite("save", err)
		}
		s.logger.Debug("saved accounts", "backend", store.KindMongo, "count", len(accounts),
			"matched", res.MatchedCount, "upserted", res.UpsertedCount)
		return nil
	})
}

// GetByName finds the document holding name and picks the exact entry.
func (s *Store) GetByName(ctx context.Context, name string) (*model.Account, error) {
	var found *model.Account
	err := s.withCollection(ctx, "get", func(ctx context.Context, coll *mongo.Collection) error {
		accounts, err := s.findOne(ctx, coll, "get", byName(name))
		if err != nil {
			return err
		}
		found = model.Find(accounts, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// DeleteByName pulls the named entry from the passwords array.
func (s *Store) DeleteByName(ctx context.Context, name string) error {
	return s.withCollection(ctx, "delete", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.UpdateOne(ctx, allDocuments(), pullName(name))
		if err != nil {
			return classifyWrite("delete", err)
		}
		s.logger.Debug("deleted account", "backend", store.KindMongo, "modified", res.ModifiedCount)
		return nil
	})
}

func (s *Store) findOne(ctx context.Context, coll *mongo.Collection, op string, filter bson.D) ([]model.Account, error) {
	res := coll.FindOne(ctx, filter)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []model.Account{}, nil
		}
		return nil, store.Unavailable(store.KindMongo, op, err)
	}

	var doc document
	if err := res.Decode(&doc); err != nil {
		return nil, store.Corrupt(store.KindMongo, op, err)
	}
	if err := model.Validate(doc.Passwords); err != nil {
		return nil, store.Corrupt(store.KindMongo, op, err)
	}
	if doc.Passwords == nil {
		return []model.Account{}, nil
	}
	return doc.Passwords, nil
}

// withCollection connects a client, runs fn and always disconnects.
func (s *Store) withCollection(ctx context.Context, op string, fn func(ctx context.Context, coll *mongo.Collection) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().
		ApplyURI(s.cfg.URI).
		SetServerSelectionTimeout(s.cfg.Timeout))
	if err != nil {
		return store.Unavailable(store.KindMongo, op, err)
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			s.logger.Warn("mongo disconnect failed", "error", err)
		}
	}()

	return fn(ctx, client.Database(s.cfg.Database).Collection(s.cfg.Collection))
}

// classifyWrite treats server-side write rejections (e.g. $pull on a
// non-array field) as corrupt data and everything else as unavailability.
func classifyWrite(op string, err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		return store.Corrupt(store.KindMongo, op, err)
	}
	return store.Unavailable(store.KindMongo, op, err)
}
