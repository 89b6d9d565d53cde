package dataset

import (
	"context"
	"time"

	"topic-insights-go/internal/types"
)

// Source serves an export as a conversation store. Sessions keep the order
// they first appear in the sheet.
type Source struct {
	sessions map[string][]string
	messages map[string][]types.Message
}

func NewSource(rows []Row) *Source {
	s := &Source{sessions: map[string][]string{}, messages: map[string][]types.Message{}}
	for _, r := range rows {
		sid := r.Message.SessionID
		if _, seen := s.messages[sid]; !seen {
			s.sessions[r.ClientID] = append(s.sessions[r.ClientID], sid)
		}
		s.messages[sid] = append(s.messages[sid], r.Message)
	}
	return s
}

func Open(path string) (*Source, Summary, error) {
	rows, err := Load(path)
	if err != nil {
		return nil, Summary{}, err
	}
	return NewSource(rows), Summarize(rows), nil
}

// SessionIDs lists sessions of the client with activity at or after since.
// Messages without a timestamp count as inside every window.
func (s *Source) SessionIDs(_ context.Context, clientID string, since time.Time) ([]string, error) {
	var out []string
	for _, sid := range s.sessions[clientID] {
		for _, m := range s.messages[sid] {
			if m.Timestamp.IsZero() || !m.Timestamp.Before(since) {
				out = append(out, sid)
				break
			}
		}
	}
	return out, nil
}

func (s *Source) SessionMessages(_ context.Context, sessionID string) ([]types.Message, error) {
	msgs := s.messages[sessionID]
	out := make([]types.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
