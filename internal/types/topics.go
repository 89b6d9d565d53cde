package types

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryPricing   Category = "pricing"
	CategoryFeatures  Category = "features"
	CategoryTechnical Category = "technical"
	CategorySupport   Category = "support"
	CategoryOther     Category = "other"
)

var Categories = []Category{CategoryPricing, CategoryFeatures, CategoryTechnical, CategorySupport, CategoryOther}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory maps free text onto a known category, defaulting to other.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

type Trend string

const (
	TrendNew    Trend = "new"
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// RawTopic is one cluster as returned by the clustering collaborator, after
// boundary validation.
type RawTopic struct {
	Name     string   `json:"topic_name" bson:"topicName"`
	Category Category `json:"category" bson:"category"`
	Examples []string `json:"question_examples" bson:"questionExamples"`
	Count    int      `json:"count" bson:"count"`
}

// Topic is a ranked, enriched topic ready for storage.
type Topic struct {
	RawTopic        `bson:",inline"`
	IntentBreakdown map[Intent]float64 `json:"intent_breakdown" bson:"intentBreakdown"`
	Trend           Trend              `json:"trend" bson:"trend"`
	IsGap           bool               `json:"is_gap" bson:"isGap"`
	GapReason       string             `json:"gap_reason" bson:"gapReason"`
	SmartInsight    string             `json:"smart_insight,omitempty" bson:"smartInsight,omitempty"`
	Rank            int                `json:"rank" bson:"rank"`
	TopicID         string             `json:"topic_id,omitempty" bson:"topicId,omitempty"`
}

// ThresholdResult records the significant-topic selection decision.
type ThresholdResult struct {
	SignificantTopics []Topic `json:"significant_topics"`
	CutoffIndex       int     `json:"cutoff_index"`
	CutoffRatio       float64 `json:"cutoff_ratio"`
	TotalTopics       int     `json:"total_topics"`
}

type ClusteringResult struct {
	Topics      []RawTopic `json:"topics"`
	RawResponse string     `json:"-"`
	TokensUsed  int        `json:"tokens_used"`
	Success     bool       `json:"success"`
	Error       string     `json:"error,omitempty"`
}

// TopicSet is the persisted snapshot for one client and period type.
type TopicSet struct {
	ClientID    string       `json:"client_id" bson:"clientId"`
	Period      PeriodType   `json:"period_type" bson:"periodType"`
	Bounds      PeriodBounds `json:"period" bson:"period"`
	LastUpdated time.Time    `json:"last_updated" bson:"lastUpdated"`
	Topics      []Topic      `json:"topics" bson:"topics"`
}

// Counts returns the name->count lookup of a previous snapshot.
func (s TopicSet) Counts() map[string]int {
	out := make(map[string]int, len(s.Topics))
	for _, t := range s.Topics {
		out[t.Name] = t.Count
	}
	return out
}

type Summary struct {
	TotalTopics    int `json:"total_topics"`
	TotalQuestions int `json:"total_questions"`
	GapsCount      int `json:"gaps_count"`
}

// Summarize computes the dashboard summary for a topic list.
func Summarize(topics []Topic) Summary {
	s := Summary{TotalTopics: len(topics)}
	for _, t := range topics {
		s.TotalQuestions += t.Count
		if t.IsGap {
			s.GapsCount++
		}
	}
	return s
}
