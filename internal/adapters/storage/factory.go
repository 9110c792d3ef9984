package storage

import (
	"context"
	"fmt"

	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
	"github.com/zatekoja/healthmarket/pkg/config"
)

// Backends carries the already connected clients a backend may need
type Backends struct {
	Postgres *postgres.Client
	Redis    *redisclient.Client
}

// New builds the StorageProvider named by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig, backends Backends) (providers.StorageProvider, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Dir)
	case "redis":
		if backends.Redis == nil {
			return nil, fmt.Errorf("redis storage requires a redis client")
		}
		return NewRedisStore(backends.Redis, cfg.KeyPrefix), nil
	case "postgres":
		if backends.Postgres == nil {
			return nil, fmt.Errorf("postgres storage requires a database client")
		}
		store := NewPostgresStore(backends.Postgres)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("create kv_store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
