package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

// RedisStorage keeps stories and pools as JSON blobs in Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// releaseLock deletes the lock only if owner still holds it.
var releaseLock = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// NewRedisStorage connects to redisURL (redis://host:port/db). A zero ttl
// keeps records forever.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Client returns the underlying Redis client so the job queue can share
// the connection pool.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	const maxRetries = 30
	retryDelay := 2 * time.Second

	for i := range maxRetries {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) SaveStory(ctx context.Context, s *plot.Story) error {
	if s == nil {
		return errors.New("story cannot be nil")
	}
	if err := r.put(ctx, storyKey(s.ID), s); err != nil {
		r.logger.Error("Failed to save story", "story_id", s.ID, "error", err)
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadStory(ctx context.Context, id uuid.UUID) (*plot.Story, error) {
	var s plot.Story
	found, err := r.get(ctx, storyKey(id), &s)
	if err != nil {
		r.logger.Error("Failed to load story", "story_id", id, "error", err)
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if !found {
		r.logger.Debug("Story not found", "story_id", id)
		return nil, nil
	}
	return &s, nil
}

func (r *RedisStorage) DeleteStory(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, storyKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete story", "story_id", id, "error", err)
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

func (r *RedisStorage) LockStory(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(id), owner, LockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock story: %w", err)
	}
	return ok, nil
}

func (r *RedisStorage) UnlockStory(ctx context.Context, id uuid.UUID, owner string) error {
	if err := releaseLock.Run(ctx, r.client, []string{lockKey(id)}, owner).Err(); err != nil {
		r.logger.Error("Failed to release story lock", "story_id", id, "error", err)
		return fmt.Errorf("failed to unlock story: %w", err)
	}
	return nil
}

func (r *RedisStorage) SavePool(ctx context.Context, p *actor.Pool) error {
	if p == nil {
		return errors.New("pool cannot be nil")
	}
	if err := r.put(ctx, poolKey(p.ID), p); err != nil {
		r.logger.Error("Failed to save pool", "pool_id", p.ID, "error", err)
		return fmt.Errorf("failed to save pool: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadPool(ctx context.Context, id uuid.UUID) (*actor.Pool, error) {
	var p actor.Pool
	found, err := r.get(ctx, poolKey(id), &p)
	if err != nil {
		r.logger.Error("Failed to load pool", "pool_id", id, "error", err)
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

func (r *RedisStorage) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisStorage) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}
