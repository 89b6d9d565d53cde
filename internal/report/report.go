// Package report shapes stored topic snapshots into the views the admin
// dashboard reads.
package report

import (
	"fmt"
	"sort"
	"time"

	"topic-insights-go/internal/aggregator"
	"topic-insights-go/internal/types"
)

type TrendingReport struct {
	ClientID    string                 `json:"client_id"`
	Period      types.PeriodType       `json:"period_type"`
	Topics      []types.Topic          `json:"topics"`
	Summary     types.Summary          `json:"summary"`
	Categories  map[types.Category]int `json:"categories"`
	Bounds      *types.PeriodBounds    `json:"period"`
	LastUpdated *time.Time             `json:"last_updated"`
}

type GapItem struct {
	TopicID    string   `json:"topic_id,omitempty"`
	TopicName  string   `json:"topic_name"`
	Count      int      `json:"count"`
	Examples   []string `json:"question_examples"`
	GapReason  string   `json:"gap_reason"`
	Suggestion string   `json:"suggestion"`
}

type GapsReport struct {
	ClientID string    `json:"client_id"`
	Gaps     []GapItem `json:"gaps"`
	Count    int       `json:"count"`
	Message  string    `json:"message"`
}

// Trending orders the snapshot by rank and summarises it. An empty set (no
// snapshot yet) yields an empty report with null bounds.
func Trending(set types.TopicSet) TrendingReport {
	topics := append([]types.Topic(nil), set.Topics...)
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Rank < topics[j].Rank })
	if topics == nil {
		topics = []types.Topic{}
	}

	rep := TrendingReport{
		ClientID:   set.ClientID,
		Period:     set.Period,
		Topics:     topics,
		Summary:    types.Summarize(topics),
		Categories: aggregator.CategoryCounts(topics),
	}
	if len(topics) > 0 {
		bounds := set.Bounds
		updated := set.LastUpdated
		rep.Bounds, rep.LastUpdated = &bounds, &updated
	}
	return rep
}

// Gaps lists the gap topics of a daily snapshot, most asked first.
func Gaps(set types.TopicSet) GapsReport {
	items := []GapItem{}
	for _, t := range set.Topics {
		if !t.IsGap {
			continue
		}
		items = append(items, GapItem{
			TopicID:    t.TopicID,
			TopicName:  t.Name,
			Count:      t.Count,
			Examples:   t.Examples,
			GapReason:  t.GapReason,
			Suggestion: Suggestion(t.Name),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Count > items[j].Count })

	msg := "No knowledge base gaps detected"
	if len(items) > 0 {
		msg = fmt.Sprintf("Found %d knowledge base gaps", len(items))
	}
	return GapsReport{ClientID: set.ClientID, Gaps: items, Count: len(items), Message: msg}
}

func Suggestion(topic string) string {
	return fmt.Sprintf("Add information about '%s' to the chatbot knowledge base.", topic)
}
