package gaps

import (
	"strings"

	"topic-insights-go/internal/types"
)

// PairTurns zips each user message with the assistant message directly after
// it in the same session. Sessions keep their first-seen order and messages
// their arrival order. Turns with an empty side are skipped.
func PairTurns(messages []types.Message) []types.ConversationTurn {
	var order []string
	bySession := make(map[string][]types.Message)
	for _, m := range messages {
		if _, ok := bySession[m.SessionID]; !ok {
			order = append(order, m.SessionID)
		}
		bySession[m.SessionID] = append(bySession[m.SessionID], m)
	}

	var turns []types.ConversationTurn
	for _, sid := range order {
		msgs := bySession[sid]
		for i := 0; i+1 < len(msgs); i++ {
			if msgs[i].Role != types.RoleUser || msgs[i+1].Role != types.RoleAssistant {
				continue
			}
			q := strings.TrimSpace(msgs[i].Text)
			a := strings.TrimSpace(msgs[i+1].Text)
			if q == "" || a == "" {
				continue
			}
			turns = append(turns, types.ConversationTurn{SessionID: sid, Question: q, Answer: a})
		}
	}
	return turns
}

// UserTexts returns the trimmed, non-empty user messages in order.
func UserTexts(messages []types.Message) []string {
	var out []string
	for _, m := range messages {
		if m.Role != types.RoleUser {
			continue
		}
		if t := strings.TrimSpace(m.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
