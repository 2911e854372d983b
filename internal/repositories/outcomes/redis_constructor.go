package outcomes

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis creates a Redis-backed journal with the default TTL
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client: client,
		TTL:    journalTTL,
	})
}
