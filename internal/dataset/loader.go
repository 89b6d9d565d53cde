// Package dataset reads conversation exports from spreadsheets.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"topic-insights-go/internal/types"
)

// Row is one exported chat line with the client it belongs to.
type Row struct {
	ClientID string
	Message  types.Message
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01-02-06 15:04",
	"2006-01-02",
}

type columns struct {
	client, session, role, text, timestamp int
}

// detectColumns finds columns by header heuristics. Missing columns are -1.
func detectColumns(header []string) columns {
	c := columns{client: -1, session: -1, role: -1, text: -1, timestamp: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "client") || strings.Contains(l, "tenant"):
			if c.client == -1 {
				c.client = i
			}
		case strings.Contains(l, "session") || strings.Contains(l, "conversation"):
			if c.session == -1 {
				c.session = i
			}
		case strings.Contains(l, "role") || strings.Contains(l, "sender") || strings.Contains(l, "author"):
			if c.role == -1 {
				c.role = i
			}
		case strings.Contains(l, "text") || strings.Contains(l, "message") || strings.Contains(l, "content"):
			if c.text == -1 {
				c.text = i
			}
		case strings.Contains(l, "time") || strings.Contains(l, "date") || strings.Contains(l, "created"):
			if c.timestamp == -1 {
				c.timestamp = i
			}
		}
	}
	return c
}

// Load reads the first sheet. Rows without a session, a known role or text
// are skipped quietly; an unparseable timestamp is left zero.
func Load(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := detectColumns(rows[0])
	if cols.session == -1 || cols.text == -1 || cols.role == -1 {
		return nil, fmt.Errorf("missing session, role or text column in header %q", rows[0])
	}

	var out []Row
	for _, r := range rows[1:] {
		role, ok := parseRole(cell(r, cols.role))
		if !ok {
			continue
		}
		msg := types.Message{
			SessionID: strings.TrimSpace(cell(r, cols.session)),
			Role:      role,
			Text:      cell(r, cols.text),
			Timestamp: parseTime(cell(r, cols.timestamp)),
		}
		if msg.SessionID == "" || strings.TrimSpace(msg.Text) == "" {
			continue
		}
		out = append(out, Row{ClientID: strings.TrimSpace(cell(r, cols.client)), Message: msg})
	}
	return out, nil
}

func cell(r []string, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

func parseRole(s string) (types.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "customer", "human", "klient":
		return types.RoleUser, true
	case "assistant", "bot", "ai", "agent":
		return types.RoleAssistant, true
	default:
		return "", false
	}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
