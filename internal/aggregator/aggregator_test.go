package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"topic-insights-go/internal/intent"
	"topic-insights-go/internal/types"
)

func topic(name string, count int, examples ...string) types.Topic {
	return types.Topic{RawTopic: types.RawTopic{Name: name, Category: types.CategoryPricing, Count: count, Examples: examples}}
}

func TestEnrichIntents(t *testing.T) {
	topics := []types.Topic{
		topic("Ceny", 2, "ile kosztuje"),
		topic("Godziny", 1, "Jakie są godziny otwarcia?"),
	}
	messages := []string{
		"Ile kosztuje wasza usługa?",
		"Ile kosztuje pakiet premium?",
		"Where is your office located?",
	}

	got := EnrichIntents(intent.Default(), topics, messages)

	assert.Equal(t, 100.0, got[0].IntentBreakdown[types.IntentBuying])
	assert.Equal(t, 0.0, got[0].IntentBreakdown[types.IntentInfoSeeking])
	// no message matches, the example itself is scored
	assert.Equal(t, 100.0, got[1].IntentBreakdown[types.IntentComparing])
	assert.Nil(t, topics[0].IntentBreakdown, "input is not mutated")
}

func TestEnrichIntentsMessageInsideExample(t *testing.T) {
	topics := []types.Topic{topic("Porównanie", 1, "Which plan is better for a small team of five?")}

	got := EnrichIntents(intent.Default(), topics, []string{"which plan is better", "unrelated question here"})

	assert.Equal(t, 100.0, got[0].IntentBreakdown[types.IntentComparing])
}

func TestEnrichIntentsNoExamples(t *testing.T) {
	got := EnrichIntents(intent.Default(), []types.Topic{topic("Pusty", 1)}, []string{"Ile kosztuje?"})

	assert.Equal(t, map[types.Intent]float64{
		types.IntentBuying:      0,
		types.IntentComparing:   0,
		types.IntentInfoSeeking: 100,
	}, got[0].IntentBreakdown)
}

func TestAnnotateGaps(t *testing.T) {
	topics := []types.Topic{
		topic("Integracje", 5, "Czy macie API?", "Jak zintegrować Shopify?"),
		topic("Ceny", 3, "Ile kosztuje?"),
		{RawTopic: types.RawTopic{Name: "Stale", Count: 1}, IsGap: true, GapReason: "old"},
	}
	gaps := []types.GapResult{
		{IsGap: true, Question: "jak zintegrować shopify?", Reason: `bot used phrase: "nie wiem"`},
		{IsGap: true, Question: "CZY MACIE API?", Reason: "short response (4 chars)"},
	}

	got := AnnotateGaps(topics, gaps)

	assert.True(t, got[0].IsGap)
	assert.Equal(t, "short response (4 chars)", got[0].GapReason, "first matching example wins")
	assert.False(t, got[1].IsGap)
	assert.Empty(t, got[1].GapReason)
	assert.False(t, got[2].IsGap)
	assert.Empty(t, got[2].GapReason)
}

func TestClearGaps(t *testing.T) {
	in := []types.Topic{{IsGap: true, GapReason: "x"}}

	got := ClearGaps(in)

	assert.False(t, got[0].IsGap)
	assert.Empty(t, got[0].GapReason)
	assert.True(t, in[0].IsGap)
}

func TestCategoryCounts(t *testing.T) {
	topics := []types.Topic{
		topic("a", 5),
		topic("b", 2),
		{RawTopic: types.RawTopic{Name: "c", Category: types.CategorySupport, Count: 4}},
	}
	assert.Equal(t, map[types.Category]int{types.CategoryPricing: 7, types.CategorySupport: 4}, CategoryCounts(topics))
}
