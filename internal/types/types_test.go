package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodType(t *testing.T) {
	assert.Equal(t, "acme#daily", PeriodDaily.Key("acme"))
	assert.Equal(t, "acme#weekly", PeriodWeekly.Key("acme"))
	assert.Equal(t, 24*time.Hour, PeriodDaily.Window(24))
	assert.Equal(t, 168*time.Hour, PeriodWeekly.Window(24))

	assert.Equal(t, PeriodWeekly, ParsePeriod(" Weekly "))
	assert.Equal(t, PeriodDaily, ParsePeriod("monthly"))
	assert.Equal(t, PeriodDaily, ParsePeriod(""))
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"pricing":    CategoryPricing,
		" Technical": CategoryTechnical,
		"SUPPORT":    CategorySupport,
		"features":   CategoryFeatures,
		"billing":    CategoryOther,
		"":           CategoryOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCategory(in), in)
	}
}

func TestSummarize(t *testing.T) {
	topics := []Topic{
		{RawTopic: RawTopic{Name: "Pricing", Count: 9}, IsGap: true},
		{RawTopic: RawTopic{Name: "Hours", Count: 4}},
		{RawTopic: RawTopic{Name: "Parking", Count: 2}, IsGap: true},
	}
	assert.Equal(t, Summary{TotalTopics: 3, TotalQuestions: 15, GapsCount: 2}, Summarize(topics))
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestTopicSetCounts(t *testing.T) {
	set := TopicSet{Topics: []Topic{
		{RawTopic: RawTopic{Name: "Pricing", Count: 50}},
		{RawTopic: RawTopic{Name: "Hours", Count: 3}},
	}}
	assert.Equal(t, map[string]int{"Pricing": 50, "Hours": 3}, set.Counts())
}
