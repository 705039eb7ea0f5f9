package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoConnectTimeout = 10 * time.Second

// MongoConfig describes how to reach the document store
type MongoConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	AppName        string
	ConnectTimeout time.Duration
}

// MongoStore bundles the client with the database the repositories share
type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func (c MongoConfig) clientOptions() *options.ClientOptions {
	opts := options.Client().ApplyURI(c.URI)
	if c.AppName != "" {
		opts.SetAppName(c.AppName)
	}
	if c.Username != "" && c.Password != "" {
		opts.SetAuth(options.Credential{
			Username: c.Username,
			Password: c.Password,
		})
	}
	return opts
}

// NewMongoStore connects, pings and selects the configured database
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo database name is empty")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultMongoConnectTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &MongoStore{Client: client, DB: client.Database(cfg.Database)}, nil
}

// EnsureIndexes creates the given indexes collection by collection.
// Creating an index that already exists with the same keys and options is a no-op.
func (s *MongoStore) EnsureIndexes(ctx context.Context, indexes map[string][]mongo.IndexModel) error {
	for collection, models := range indexes {
		if len(models) == 0 {
			continue
		}
		if _, err := s.DB.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
