package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-insights-go/internal/types"
)

func snapshot() types.TopicSet {
	return types.TopicSet{
		ClientID:    "acme",
		Period:      types.PeriodDaily,
		Bounds:      types.PeriodBounds{Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		LastUpdated: time.Date(2025, 6, 2, 0, 5, 0, 0, time.UTC),
		Topics: []types.Topic{
			{RawTopic: types.RawTopic{Name: "Kontakt", Category: types.CategorySupport, Count: 3}, Rank: 3, IsGap: true, GapReason: "short response (12 chars)"},
			{RawTopic: types.RawTopic{Name: "Cennik", Category: types.CategoryPricing, Count: 20}, Rank: 1},
			{RawTopic: types.RawTopic{Name: "Integracje", Category: types.CategoryTechnical, Count: 7, Examples: []string{"API?"}}, Rank: 2, IsGap: true, GapReason: `bot used phrase: "nie wiem"`},
		},
	}
}

func TestTrending(t *testing.T) {
	rep := Trending(snapshot())

	require.Len(t, rep.Topics, 3)
	assert.Equal(t, "Cennik", rep.Topics[0].Name)
	assert.Equal(t, "Integracje", rep.Topics[1].Name)
	assert.Equal(t, "Kontakt", rep.Topics[2].Name)
	assert.Equal(t, types.Summary{TotalTopics: 3, TotalQuestions: 30, GapsCount: 2}, rep.Summary)
	assert.Equal(t, 20, rep.Categories[types.CategoryPricing])
	require.NotNil(t, rep.Bounds)
	assert.Equal(t, 1, rep.Bounds.Start.Day())
	require.NotNil(t, rep.LastUpdated)
}

func TestTrendingEmpty(t *testing.T) {
	rep := Trending(types.TopicSet{ClientID: "acme", Period: types.PeriodWeekly})

	assert.Empty(t, rep.Topics)
	assert.Nil(t, rep.Bounds)
	assert.Nil(t, rep.LastUpdated)

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"topics":[]`)
	assert.Contains(t, string(raw), `"period":null`)
}

func TestGaps(t *testing.T) {
	rep := Gaps(snapshot())

	require.Equal(t, 2, rep.Count)
	assert.Equal(t, "Integracje", rep.Gaps[0].TopicName)
	assert.Equal(t, "Kontakt", rep.Gaps[1].TopicName)
	assert.Equal(t, "Add information about 'Integracje' to the chatbot knowledge base.", rep.Gaps[0].Suggestion)
	assert.Equal(t, []string{"API?"}, rep.Gaps[0].Examples)
	assert.Equal(t, "Found 2 knowledge base gaps", rep.Message)

	none := Gaps(types.TopicSet{ClientID: "acme"})
	assert.Zero(t, none.Count)
	assert.NotNil(t, none.Gaps)
	assert.Equal(t, "No knowledge base gaps detected", none.Message)
}
