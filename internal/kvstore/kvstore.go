package kvstore

import (
	"context"
	"fmt"

	"github.com/blog-content-api/internal/config"
	"github.com/rs/zerolog"
)

// Store is the associative store the blog persists into. Implementations wrap
// an external key-value backend and contain its JSON (de)serialization. A
// missing key is reported through the bool return, never as an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Put(ctx context.Context, key, value string) error
	PutJSON(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New creates the Store selected by cfg.Driver.
func New(cfg *config.KVConfig, log zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedisStore(cfg, log)
	case "postgres":
		return NewPostgresStore(cfg, log)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv driver: %s", cfg.Driver)
	}
}
