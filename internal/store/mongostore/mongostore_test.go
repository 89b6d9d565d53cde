package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("topic_insights_test_%d", time.Now().UnixNano())
	client, s, err := Connect(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Database(name).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return s
}

func TestTopics(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.GetTopics(ctx, "acme", types.PeriodDaily)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.ReplaceTopics(ctx, "acme", types.PeriodDaily, types.PeriodBounds{}, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Cennik", Category: types.CategoryPricing, Examples: []string{"ile?"}, Count: 9}, Rank: 1,
			IntentBreakdown: map[types.Intent]float64{types.IntentBuying: 100}},
	}))
	require.NoError(t, s.ReplaceTopics(ctx, "acme", types.PeriodDaily, types.PeriodBounds{}, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Dostawa", Count: 4}, Rank: 1},
	}))

	set, err := s.GetTopics(ctx, "acme", types.PeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Dostawa": 4}, set.Counts())
	assert.Equal(t, types.PeriodDaily, set.Period)
	assert.Regexp(t, `^topic_1_[0-9a-f]{8}$`, set.Topics[0].TopicID)

	_, err = s.GetTopics(ctx, "acme", types.PeriodWeekly)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMessages(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveMessages(ctx, "acme", []types.Message{
		{SessionID: "s1", Role: types.RoleAssistant, Text: "a", Timestamp: base.Add(time.Minute)},
		{SessionID: "s1", Role: types.RoleUser, Text: "q", Timestamp: base},
		{SessionID: "s2", Role: types.RoleUser, Text: "q2", Timestamp: base.Add(time.Hour)},
	}))

	ids, err := s.SessionIDs(ctx, "acme", base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, ids)

	msgs, err := s.SessionMessages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "q", msgs[0].Text)
}
