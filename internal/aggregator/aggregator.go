// Package aggregator joins per-message signals onto selected topics.
package aggregator

import (
	"strings"

	"topic-insights-go/internal/intent"
	"topic-insights-go/internal/types"
)

// EnrichIntents sets IntentBreakdown on copies of topics. A topic's messages
// are the clean messages that contain one of its examples or are contained in
// one, case-insensitively. With no match the examples themselves are scored.
func EnrichIntents(c *intent.Classifier, topics []types.Topic, messages []string) []types.Topic {
	lowered := make([]string, len(messages))
	for i, m := range messages {
		lowered[i] = strings.ToLower(m)
	}

	out := make([]types.Topic, len(topics))
	for i, t := range topics {
		var related []string
		for j, m := range lowered {
			if matchesAny(m, t.Examples) {
				related = append(related, messages[j])
			}
		}
		if len(related) == 0 {
			related = t.Examples
		}
		t.IntentBreakdown = c.Breakdown(related)
		out[i] = t
	}
	return out
}

func matchesAny(msg string, examples []string) bool {
	for _, ex := range examples {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex == "" {
			continue
		}
		if strings.Contains(msg, ex) || strings.Contains(ex, msg) {
			return true
		}
	}
	return false
}

// AnnotateGaps marks a topic as a gap when one of its examples equals a gap
// question, ignoring case. The first matching example supplies the reason.
func AnnotateGaps(topics []types.Topic, gaps []types.GapResult) []types.Topic {
	reasons := make(map[string]string, len(gaps))
	for _, g := range gaps {
		key := strings.ToLower(g.Question)
		if _, seen := reasons[key]; !seen {
			reasons[key] = g.Reason
		}
	}

	out := make([]types.Topic, len(topics))
	for i, t := range topics {
		t.IsGap, t.GapReason = false, ""
		for _, ex := range t.Examples {
			if reason, ok := reasons[strings.ToLower(ex)]; ok {
				t.IsGap, t.GapReason = true, reason
				break
			}
		}
		out[i] = t
	}
	return out
}

// ClearGaps is used for periods without gap detection.
func ClearGaps(topics []types.Topic) []types.Topic {
	out := make([]types.Topic, len(topics))
	for i, t := range topics {
		t.IsGap, t.GapReason = false, ""
		out[i] = t
	}
	return out
}

// CategoryCounts sums topic counts per category.
func CategoryCounts(topics []types.Topic) map[types.Category]int {
	cats := map[types.Category]int{}
	for _, t := range topics {
		if t.Category != "" {
			cats[t.Category] += t.Count
		}
	}
	return cats
}
