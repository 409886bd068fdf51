package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	appName            = "user-management"
	defaultDialTimeout = 10 * time.Second
)

// Config selects the user database and sizes the client pool. A zero
// MaxPoolSize keeps the driver default.
type Config struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	DialTimeout time.Duration
}

func clientOptions(cfg Config) *options.ClientOptions {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(dial).
		SetServerSelectionTimeout(dial)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	return opts
}

// Connect opens the client and returns the user database once the server
// answers a ping within the dial timeout.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("mongo connect: database name is empty")
	}
	opts := clientOptions(cfg)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, *opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}

// Pinger reports database health for /health/ready.
type Pinger struct {
	DB *mongo.Database
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.DB.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
