// Package actionable attaches the business insight sentence to the leading
// topic of a run.
package actionable

import (
	"context"
	"errors"
	"time"

	"topic-insights-go/internal/cache"
	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/types"
)

// Insighter produces one insight sentence, "" on failure.
type Insighter interface {
	Insight(ctx context.Context, topicName string, examples []string) string
}

type Generator struct {
	gen   Insighter
	cache cache.Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewGenerator wires an insight source with an optional cache; a nil store
// disables caching.
func NewGenerator(gen Insighter, store cache.Store, ttl time.Duration, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{gen: gen, cache: store, ttl: ttl, log: log.Component("actionable")}
}

// Generate returns a copy of topics with SmartInsight set on the rank 1
// topic. Cached text for the same name and examples is reused.
func (g *Generator) Generate(ctx context.Context, topics []types.Topic) []types.Topic {
	out := make([]types.Topic, len(topics))
	copy(out, topics)

	for i := range out {
		if out[i].Rank != 1 {
			continue
		}
		out[i].SmartInsight = g.insight(ctx, out[i])
		break
	}
	return out
}

func (g *Generator) insight(ctx context.Context, t types.Topic) string {
	if t.Name == "" || len(t.Examples) == 0 {
		return ""
	}
	key := cache.Key(append([]string{t.Name}, t.Examples...)...)

	if g.cache != nil {
		e, err := g.cache.Get(ctx, key)
		switch {
		case err == nil:
			g.log.WithField("topic", t.Name).Debug("insight cache hit")
			return e.Value
		case !errors.Is(err, cache.ErrMiss):
			g.log.WithError(err).Warn("insight cache read failed")
		}
	}

	text := g.gen.Insight(ctx, t.Name, t.Examples)
	if text != "" && g.cache != nil {
		if err := g.cache.Set(ctx, key, text, g.ttl); err != nil {
			g.log.WithError(err).Warn("insight cache write failed")
		}
	}
	return text
}
