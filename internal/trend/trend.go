// Package trend labels topics against the previous snapshot of the same
// client and period type.
package trend

import (
	"context"
	"errors"
	"fmt"

	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

// Label compares a count with its previous value. Growth above 20% is up, a
// fall below 80% is down. Integer arithmetic keeps the boundaries exact.
func Label(oldCount, newCount int) types.Trend {
	switch {
	case newCount*5 > oldCount*6:
		return types.TrendUp
	case newCount*5 < oldCount*4:
		return types.TrendDown
	default:
		return types.TrendStable
	}
}

// Apply returns copies of topics with Trend set from the previous name->count
// lookup. Names are matched exactly.
func Apply(previous map[string]int, topics []types.Topic) []types.Topic {
	out := make([]types.Topic, len(topics))
	for i, t := range topics {
		old, ok := previous[t.Name]
		if ok {
			t.Trend = Label(old, t.Count)
		} else {
			t.Trend = types.TrendNew
		}
		out[i] = t
	}
	return out
}

// SnapshotReader is the read half of a topic store.
type SnapshotReader interface {
	GetTopics(ctx context.Context, clientID string, period types.PeriodType) (types.TopicSet, error)
}

type Comparator struct {
	reader SnapshotReader
}

func NewComparator(r SnapshotReader) *Comparator {
	return &Comparator{reader: r}
}

// Compare loads the previous snapshot for client#period and labels topics.
// A missing snapshot makes every topic new. On any other read error every
// topic is still labelled new and the error is returned for logging.
func (c *Comparator) Compare(ctx context.Context, clientID string, period types.PeriodType, topics []types.Topic) ([]types.Topic, error) {
	prev, err := c.reader.GetTopics(ctx, clientID, period)
	if err != nil {
		labelled := Apply(nil, topics)
		if errors.Is(err, store.ErrNotFound) {
			return labelled, nil
		}
		return labelled, fmt.Errorf("load previous topics for %s: %w", period.Key(clientID), err)
	}
	return Apply(prev.Counts(), topics), nil
}
