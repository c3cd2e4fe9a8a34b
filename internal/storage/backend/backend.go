// Package backend opens the storage.Store named by configuration.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/kudos/internal/config"
	"github.com/mmynk/kudos/internal/storage"
	"github.com/mmynk/kudos/internal/storage/mongo"
	"github.com/mmynk/kudos/internal/storage/postgres"
	"github.com/mmynk/kudos/internal/storage/sqlite"
)

// ConnectTimeout bounds the initial connection and migration.
const ConnectTimeout = 15 * time.Second

// Open connects the configured backend and applies its schema.
func Open(ctx context.Context, cfg config.Config) (storage.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	switch cfg.DatabaseType {
	case config.DatabaseSQLite:
		return sqlite.New(cfg.DatabaseURL)
	case config.DatabasePostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.DatabaseMongo:
		return mongo.New(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}
