package types

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one raw chat line as delivered by the conversation store.
type Message struct {
	SessionID string    `json:"session_id" bson:"sessionId"`
	Role      Role      `json:"role" bson:"role"`
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// ConversationTurn pairs a user question with the assistant reply that
// immediately followed it in the same session.
type ConversationTurn struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type PeriodType string

const (
	PeriodDaily  PeriodType = "daily"
	PeriodWeekly PeriodType = "weekly"
)

func (p PeriodType) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly
}

// ParsePeriod returns the period for s, falling back to daily.
func ParsePeriod(s string) PeriodType {
	p := PeriodType(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return PeriodDaily
}

// Key is the composite storage key; daily and weekly snapshots never share one.
func (p PeriodType) Key(clientID string) string {
	return clientID + "#" + string(p)
}

// Window is the look-back for a run given the daily window in hours.
func (p PeriodType) Window(hours int) time.Duration {
	if p == PeriodWeekly {
		hours *= 7
	}
	return time.Duration(hours) * time.Hour
}

// PeriodBounds is the historical window a run covered.
type PeriodBounds struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterStats counts dropped messages by reason.
type FilterStats struct {
	Total           int `json:"total"`
	Filtered        int `json:"filtered"`
	Greetings       int `json:"greetings"`
	JunkWords       int `json:"junk_words"`
	Profanity       int `json:"profanity"`
	TooShort        int `json:"too_short"`
	HighSymbolRatio int `json:"high_symbol_ratio"`
}

type Intent string

const (
	IntentBuying      Intent = "buying"
	IntentComparing   Intent = "comparing"
	IntentInfoSeeking Intent = "info_seeking"
)

// Intents lists every intent in reporting order.
var Intents = []Intent{IntentBuying, IntentComparing, IntentInfoSeeking}

type GapIndicator string

const (
	GapNone            GapIndicator = "no_gap"
	GapDontKnow        GapIndicator = "dont_know"
	GapShortResponse   GapIndicator = "short_response"
	GapHumanEscalation GapIndicator = "human_escalation"
)

type GapResult struct {
	IsGap     bool         `json:"is_gap"`
	Indicator GapIndicator `json:"indicator"`
	Reason    string       `json:"reason"`
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
}

type GapStats struct {
	Total           int `json:"total"`
	Gaps            int `json:"gaps"`
	DontKnow        int `json:"dont_know"`
	ShortResponse   int `json:"short_response"`
	HumanEscalation int `json:"human_escalation"`
}
