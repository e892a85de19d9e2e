package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	AddFlash(ctx context.Context, id string, f Flash, ttl time.Duration) error
	TakeFlashes(ctx context.Context, id string) ([]Flash, error)
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func key(id string) string {
	return "session:" + id
}

// FlashKey holds the pending flashes of a session apart from its record, so
// queuing a message never rewrites the session itself.
func FlashKey(id string) string {
	return key(id) + ":flashes"
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, key(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete is idempotent, so concurrent clears simply race to the same end
// state.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, key(id), FlashKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// AddFlash queues f only while the session record still exists.
func (r *RedisStore) AddFlash(ctx context.Context, id string, f Flash, ttl time.Duration) error {
	exists, err := r.rdb.Exists(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode flash: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, FlashKey(id), raw)
	pipe.Expire(ctx, FlashKey(id), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save flash: %w", err)
	}
	return nil
}

// TakeFlashes returns the queued flashes in order and removes them.
func (r *RedisStore) TakeFlashes(ctx context.Context, id string) ([]Flash, error) {
	pipe := r.rdb.TxPipeline()
	list := pipe.LRange(ctx, FlashKey(id), 0, -1)
	pipe.Del(ctx, FlashKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read flashes: %w", err)
	}

	var flashes []Flash
	for _, raw := range list.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("failed to decode flash: %w", err)
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
