package sqlstore

import (
	"time"

	"topic-insights-go/internal/types"
)

// TopicRow is one ranked topic of a client#period snapshot.
type TopicRow struct {
	ID              uint     `gorm:"primaryKey"`
	ClientPeriod    string   `gorm:"size:191;index"`
	ClientID        string   `gorm:"size:191"`
	PeriodType      string   `gorm:"size:16"`
	TopicID         string   `gorm:"size:64"`
	TopicName       string   `gorm:"size:255"`
	Category        string   `gorm:"size:32"`
	Examples        []string `gorm:"serializer:json"`
	Count           int
	IntentBreakdown map[types.Intent]float64 `gorm:"serializer:json"`
	Trend           string                   `gorm:"size:16"`
	IsGap           bool
	GapReason       string
	SmartInsight    string
	Rank            int
	PeriodStart     time.Time
	PeriodEnd       time.Time
	LastUpdated     time.Time
	ExpiresAt       int64 `gorm:"index"`
}

// MessageRow is one ingested chat line.
type MessageRow struct {
	ID        uint   `gorm:"primaryKey"`
	ClientID  string `gorm:"size:191;index"`
	SessionID string `gorm:"size:191;index"`
	Role      string `gorm:"size:16"`
	Text      string
	Timestamp time.Time
	UnixMilli int64 `gorm:"index"`
}

func toTopicRow(clientID string, period types.PeriodType, bounds types.PeriodBounds, now time.Time, t types.Topic) TopicRow {
	return TopicRow{
		ClientPeriod:    period.Key(clientID),
		ClientID:        clientID,
		PeriodType:      string(period),
		TopicID:         t.TopicID,
		TopicName:       t.Name,
		Category:        string(t.Category),
		Examples:        t.Examples,
		Count:           t.Count,
		IntentBreakdown: t.IntentBreakdown,
		Trend:           string(t.Trend),
		IsGap:           t.IsGap,
		GapReason:       t.GapReason,
		SmartInsight:    t.SmartInsight,
		Rank:            t.Rank,
		PeriodStart:     bounds.Start.UTC(),
		PeriodEnd:       bounds.End.UTC(),
		LastUpdated:     now,
	}
}

func (r TopicRow) topic() types.Topic {
	return types.Topic{
		RawTopic: types.RawTopic{
			Name:     r.TopicName,
			Category: types.ParseCategory(r.Category),
			Examples: r.Examples,
			Count:    r.Count,
		},
		IntentBreakdown: r.IntentBreakdown,
		Trend:           types.Trend(r.Trend),
		IsGap:           r.IsGap,
		GapReason:       r.GapReason,
		SmartInsight:    r.SmartInsight,
		Rank:            r.Rank,
		TopicID:         r.TopicID,
	}
}
