package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Local is an in-process store backed by go-cache.
type Local struct {
	items *gocache.Cache
	now   func() time.Time
}

func NewLocal(defaultTTL time.Duration) *Local {
	return &Local{
		items: gocache.New(defaultTTL, 10*time.Minute),
		now:   time.Now,
	}
}

func (l *Local) Get(_ context.Context, key string) (Entry[string], error) {
	v, ok := l.items.Get(key)
	if !ok {
		return Entry[string]{}, ErrMiss
	}
	e, ok := v.(Entry[string])
	if !ok || !e.Fresh(l.now()) {
		return Entry[string]{}, ErrMiss
	}
	return e, nil
}

func (l *Local) Set(_ context.Context, key, value string, ttl time.Duration) error {
	expiry := ttl
	if expiry <= 0 {
		expiry = gocache.NoExpiration
	}
	l.items.Set(key, NewEntry(value, l.now(), ttl), expiry)
	return nil
}
