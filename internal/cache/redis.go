package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "insight:"

// Redis shares cached insights between replicas.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (c *Redis) Get(ctx context.Context, key string) (Entry[string], error) {
	data, err := c.client.Get(ctx, redisPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Entry[string]{}, ErrMiss
	}
	if err != nil {
		return Entry[string]{}, err
	}

	var e Entry[string]
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return Entry[string]{}, err
	}
	if !e.Fresh(c.now()) {
		return Entry[string]{}, ErrMiss
	}
	return e, nil
}

func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	data, err := json.Marshal(NewEntry(value, c.now(), ttl))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisPrefix+key, data, ttl).Err()
}
