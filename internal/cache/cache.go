// Package cache stores generated insight text between runs. Every value is
// kept as an explicit Entry so freshness is checked by the reader, not by
// process state.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrMiss is returned when a key is absent or its entry has expired.
var ErrMiss = errors.New("cache: miss")

// Entry is a cached value with the time it was stored and how long it stays
// fresh. A zero TTL never expires.
type Entry[T any] struct {
	Value    T             `json:"value"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

func NewEntry[T any](v T, now time.Time, ttl time.Duration) Entry[T] {
	return Entry[T]{Value: v, StoredAt: now, TTL: ttl}
}

func (e Entry[T]) Fresh(now time.Time) bool {
	return e.TTL <= 0 || now.Sub(e.StoredAt) < e.TTL
}

type Store interface {
	Get(ctx context.Context, key string) (Entry[string], error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Key hashes its parts into a stable cache key.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:16])
}
