package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"topic-insights-go/internal/types"
)

const maxExamples = 3

// ParseTopics validates a clustering reply field by field. The reply may be
// fenced, surrounded by prose, a bare array or an object with a "topics"
// array. Only an unusable reply as a whole is an error.
func ParseTopics(reply string) ([]types.RawTopic, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, errors.New("no JSON found in clustering reply")
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode clustering reply: %w", err)
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["topics"].([]any)
		if !ok {
			return nil, errors.New("clustering reply has no topics list")
		}
		items = list
	default:
		return nil, errors.New("clustering reply is not a list")
	}

	topics := make([]types.RawTopic, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		topics = append(topics, rawTopic(m, len(topics)+1))
	}
	return topics, nil
}

func rawTopic(m map[string]any, pos int) types.RawTopic {
	name := strings.TrimSpace(cast.ToString(m["topic_name"]))
	if name == "" {
		name = fmt.Sprintf("Topic %d", pos)
	}

	var examples []string
	if list, ok := m["question_examples"].([]any); ok {
		for _, e := range list {
			s, err := cast.ToStringE(e)
			if err != nil || strings.TrimSpace(s) == "" {
				continue
			}
			examples = append(examples, s)
			if len(examples) == maxExamples {
				break
			}
		}
	}

	count, err := cast.ToIntE(m["count"])
	if err != nil || count < 1 {
		count = 1
	}

	return types.RawTopic{
		Name:     name,
		Category: types.ParseCategory(cast.ToString(m["category"])),
		Examples: examples,
		Count:    count,
	}
}

// extractJSON returns the first valid JSON array or object in s. A fenced
// block is searched before the rest of the reply.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if body, ok := fencedBlock(s); ok {
		if raw := firstJSON(body); raw != "" {
			return raw
		}
	}
	for _, fence := range []string{"```json", "```JSON", "```"} {
		s = strings.ReplaceAll(s, fence, "")
	}
	return firstJSON(s)
}

// fencedBlock returns the body of the first markdown code fence. An
// unterminated fence runs to the end of s.
func fencedBlock(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open == -1 {
		return "", false
	}
	body := strings.TrimLeftFunc(s[open+3:], func(r rune) bool {
		return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
	})
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return body, true
}

// firstJSON tries every '[' or '{' in order and returns the first balanced
// slice that is valid JSON.
func firstJSON(s string) string {
	for from := 0; from < len(s); {
		i := strings.IndexAny(s[from:], "[{")
		if i == -1 {
			return ""
		}
		start := from + i
		if end := balancedEnd(s, start); end != -1 {
			if cand := s[start:end]; json.Valid([]byte(cand)) {
				return strings.TrimSpace(cand)
			}
		}
		from = start + 1
	}
	return ""
}

// balancedEnd returns the index just past the bracket closing the one at
// start, or -1. Brackets inside JSON strings are ignored.
func balancedEnd(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
