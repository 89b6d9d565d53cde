package dataset

import (
	"sort"

	"topic-insights-go/internal/types"
)

type Summary struct {
	TotalMessages int            `json:"total_messages"`
	Sessions      int            `json:"sessions"`
	ByClient      map[string]int `json:"by_client"`
	UserMessages  int            `json:"user_messages"`
	Clients       []string       `json:"clients"`
}

// Summarize counts what an export contains; logged at startup.
func Summarize(rows []Row) Summary {
	s := Summary{ByClient: map[string]int{}}
	sessions := map[string]struct{}{}
	for _, r := range rows {
		s.TotalMessages++
		s.ByClient[r.ClientID]++
		sessions[r.Message.SessionID] = struct{}{}
		if r.Message.Role == types.RoleUser {
			s.UserMessages++
		}
	}
	s.Sessions = len(sessions)
	for c := range s.ByClient {
		s.Clients = append(s.Clients, c)
	}
	sort.Strings(s.Clients)
	return s
}
