package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

func TestTopics(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetTopics(ctx, "acme", types.PeriodDaily)
	assert.ErrorIs(t, err, store.ErrNotFound)

	bounds := types.PeriodBounds{Start: time.Unix(0, 0).UTC(), End: time.Unix(3600, 0).UTC()}
	require.NoError(t, s.ReplaceTopics(ctx, "acme", types.PeriodDaily, bounds, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Cennik", Count: 9}, Rank: 1},
		{RawTopic: types.RawTopic{Name: "API", Count: 2}, Rank: 2},
	}))
	require.NoError(t, s.ReplaceTopics(ctx, "acme", types.PeriodWeekly, bounds, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Tydzień", Count: 40}, Rank: 1},
	}))
	require.NoError(t, s.ReplaceTopics(ctx, "acme", types.PeriodDaily, bounds, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Dostawa", Count: 5}, Rank: 1},
	}))

	daily, err := s.GetTopics(ctx, "acme", types.PeriodDaily)
	require.NoError(t, err)
	require.Len(t, daily.Topics, 1)
	assert.Equal(t, "Dostawa", daily.Topics[0].Name)
	assert.Regexp(t, `^topic_1_[0-9a-f]{8}$`, daily.Topics[0].TopicID)
	assert.Equal(t, bounds, daily.Bounds)
	assert.False(t, daily.LastUpdated.IsZero())

	weekly, err := s.GetTopics(ctx, "acme", types.PeriodWeekly)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Tydzień": 40}, weekly.Counts())
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveMessages(ctx, "acme", []types.Message{
		{SessionID: "old", Role: types.RoleUser, Text: "stare", Timestamp: base.Add(-48 * time.Hour)},
		{SessionID: "s1", Role: types.RoleAssistant, Text: "a", Timestamp: base.Add(time.Minute)},
		{SessionID: "s1", Role: types.RoleUser, Text: "q", Timestamp: base},
		{SessionID: "s2", Role: types.RoleUser, Text: "q2", Timestamp: base.Add(time.Hour)},
	}))
	require.NoError(t, s.SaveMessages(ctx, "globex", []types.Message{
		{SessionID: "g1", Role: types.RoleUser, Text: "hi", Timestamp: base},
	}))

	ids, err := s.SessionIDs(ctx, "acme", base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, ids)

	msgs, err := s.SessionMessages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "q", msgs[0].Text)
	assert.Equal(t, "a", msgs[1].Text)
}
