package repository

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository throttles credential-guessing traffic (login and
// registration attempts) per key.
type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, key string, requests int, window time.Duration) (bool, error)
}

type rateLimitRepository struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) RateLimitRepository {
	return &rateLimitRepository{client: client}
}

// CheckRateLimit counts requests in a fixed window. Fails open: a Redis
// outage must not lock everyone out of login.
func (r *rateLimitRepository) CheckRateLimit(ctx context.Context, key string, requests int, window time.Duration) (bool, error) {
	// Hash the key for privacy; raw keys can contain emails.
	hashedKey := fmt.Sprintf("rl:%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	pipe := r.client.TxPipeline()
	count := pipe.Incr(ctx, hashedKey)
	pipe.Expire(ctx, hashedKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}

	return count.Val() <= int64(requests), nil
}
