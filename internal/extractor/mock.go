package extractor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"topic-insights-go/internal/types"
)

type mockBucket struct {
	name     string
	category types.Category
	keywords []string
}

var mockBuckets = []mockBucket{
	{"Cennik", types.CategoryPricing, []string{"cen", "koszt", "price", "cost", "płat", "rabat", "abonament"}},
	{"Integracje", types.CategoryTechnical, []string{"api", "integrac", "integrat", "shopify", "webhook", "bezpiecz"}},
	{"Kontakt", types.CategorySupport, []string{"kontakt", "godzin", "telefon", "email", "contact", "hours", "adres"}},
	{"Funkcje", types.CategoryFeatures, []string{"funkc", "możliw", "feature", "jak działa", "czy można"}},
}

// MockClusterer groups questions by fixed keyword buckets. Used with
// USE_MOCK_LLM for offline runs.
type MockClusterer struct{}

func (MockClusterer) Cluster(_ context.Context, questions []string, maxTopics int) types.ClusteringResult {
	unique := PrepareQuestions(questions)
	if len(unique) == 0 {
		return types.ClusteringResult{Success: true}
	}

	groups := make(map[string]*types.RawTopic)
	var order []string
	for _, q := range unique {
		b := bucketFor(q)
		t, ok := groups[b.name]
		if !ok {
			t = &types.RawTopic{Name: b.name, Category: b.category}
			groups[b.name] = t
			order = append(order, b.name)
		}
		t.Count++
		if len(t.Examples) < maxExamples {
			t.Examples = append(t.Examples, q)
		}
	}

	topics := make([]types.RawTopic, 0, len(order))
	for _, name := range order {
		topics = append(topics, *groups[name])
	}
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Count > topics[j].Count })
	if limit := ClampTopics(maxTopics); len(topics) > limit {
		topics = topics[:limit]
	}
	return types.ClusteringResult{Topics: topics, Success: true}
}

func bucketFor(q string) mockBucket {
	lower := strings.ToLower(q)
	for _, b := range mockBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b
			}
		}
	}
	return mockBucket{name: "Inne", category: types.CategoryOther}
}

// MockInsight returns a templated sentence without calling a model.
type MockInsight struct{}

func (MockInsight) Insight(_ context.Context, topicName string, examples []string) string {
	if topicName == "" || len(examples) == 0 {
		return ""
	}
	return fmt.Sprintf("Użytkownicy często pytają o temat %q, co sugeruje brak tej informacji w bazie wiedzy.", topicName)
}
