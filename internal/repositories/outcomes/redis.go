package outcomes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

const (
	journalKey = "encounter:%s:outcomes"

	// Journals outlive their encounter by a day
	journalTTL = 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

// redisRepository implements Repository with one redis list per encounter
type redisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed journal
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = journalTTL
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    ttl,
	}
}

// Append implements Repository
func (r *redisRepository) Append(ctx context.Context, encounterID string, outcome *actions.Outcome) error {
	if encounterID == "" {
		return errors.InvalidArgumentf("encounter ID cannot be empty")
	}
	if outcome == nil {
		return errors.InvalidArgumentf("outcome cannot be nil")
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return errors.Wrap(err, "failed to serialize outcome")
	}

	key := fmt.Sprintf(journalKey, encounterID)

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to append outcome to %s", key)
	}
	return nil
}

// List implements Repository
func (r *redisRepository) List(ctx context.Context, encounterID string) ([]*actions.Outcome, error) {
	key := fmt.Sprintf(journalKey, encounterID)

	entries, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []*actions.Outcome{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}

	out := make([]*actions.Outcome, 0, len(entries))
	for i, entry := range entries {
		var outcome actions.Outcome
		if err := json.Unmarshal([]byte(entry), &outcome); err != nil {
			return nil, errors.Wrapf(err, "failed to decode outcome %d of %s", i, key)
		}
		out = append(out, &outcome)
	}
	return out, nil
}

// Delete implements Repository
func (r *redisRepository) Delete(ctx context.Context, encounterID string) error {
	key := fmt.Sprintf(journalKey, encounterID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete %s", key)
	}
	return nil
}
