package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore implements Store on top of a Redis server. Keys are namespaced
// with a configurable prefix so one server can hold several blogs.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(cfg *config.KVConfig, log zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	s := &RedisStore{
		client: client,
		prefix: strings.TrimSpace(cfg.RedisPrefix),
		log:    log.With().Str("component", "kvstore-redis").Logger(),
	}

	s.log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Redis connection established")
	return s, nil
}

// Get returns the raw string value for key, with false when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.buildKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

// GetJSON unmarshals the value for key into dest.
func (s *RedisStore) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Put stores a raw string value under key.
func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.buildKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PutJSON marshals value and stores it under key.
func (s *RedisStore) PutJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, string(payload))
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) buildKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
