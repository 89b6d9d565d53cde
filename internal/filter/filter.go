// Package filter drops chat messages that carry no question worth clustering:
// greetings, one-word acknowledgements, profanity, near-empty text and
// symbol noise.
package filter

import (
	"strings"
	"unicode"

	"topic-insights-go/internal/types"
)

const (
	// MinWordChars is the minimum number of word characters a message needs.
	MinWordChars = 5
	// MaxSymbolRatio is the largest tolerated share of non-alphanumeric,
	// non-space characters.
	MaxSymbolRatio = 0.30
)

// Reason says why a message was dropped. The zero value means it was kept.
type Reason string

const (
	Kept            Reason = ""
	Greeting        Reason = "greeting"
	JunkWord        Reason = "junk_word"
	Profanity       Reason = "profanity"
	TooShort        Reason = "too_short"
	HighSymbolRatio Reason = "high_symbol_ratio"
)

// Vocabulary holds the word lists the filter matches against.
type Vocabulary struct {
	Greetings []string `yaml:"greetings"`
	JunkWords []string `yaml:"junk_words"`
	Profanity []string `yaml:"profanity"`
}

// DefaultVocabulary returns the built-in Polish and English lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Greetings: []string{
			"hej", "cześć", "czesc", "witam", "witaj", "dzień dobry", "dzien dobry",
			"dobry wieczór", "dobry wieczor", "siema", "elo", "yo", "hejka",
			"hello", "hi", "hey", "good morning", "good evening", "howdy",
		},
		JunkWords: []string{
			"ok", "okay", "no", "nie", "tak", "dobrze", "dzięki", "dzieki", "dziekuje",
			"dziękuję", "thanks", "thx", "super", "git", "spoko", "okej", "oki",
			"?", "??", "???", "!", "!!", "...", "hmm", "hm", "ee", "eee", "aa", "aaa",
			"co", "co?", "jak", "jak?", "kiedy", "kiedy?", "gdzie", "gdzie?",
			"a", "i", "o", "e", "u", "y", "w", "z", "na", "do", "po", "za",
		},
		Profanity: []string{
			"kurwa", "kurde", "cholera", "do diabła", "do cholery", "pierdol",
			"pierdole", "chuj", "dupa", "gówno", "gowno", "skurwysyn", "debil",
			"idiota", "kretyn", "fuck", "shit", "damn", "bitch",
		},
	}
}

// Filter is safe for concurrent use once built.
type Filter struct {
	greetings map[string]struct{}
	junk      map[string]struct{}
	profanity []string
}

func New(v Vocabulary) *Filter {
	f := &Filter{
		greetings: toSet(v.Greetings),
		junk:      toSet(v.JunkWords),
	}
	for _, p := range v.Profanity {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			f.profanity = append(f.profanity, p)
		}
	}
	return f
}

var defaultFilter = New(DefaultVocabulary())

func Default() *Filter { return defaultFilter }

// Messages filters with the default vocabulary.
func Messages(messages []string) ([]string, types.FilterStats) {
	return defaultFilter.Apply(messages)
}

// Apply keeps messages that pass every check, verbatim and in order.
func (f *Filter) Apply(messages []string) ([]string, types.FilterStats) {
	stats := types.FilterStats{Total: len(messages)}
	clean := make([]string, 0, len(messages))

	for _, msg := range messages {
		reason := f.Check(msg)
		if reason == Kept {
			clean = append(clean, msg)
			continue
		}
		stats.Filtered++
		switch reason {
		case Greeting:
			stats.Greetings++
		case JunkWord:
			stats.JunkWords++
		case Profanity:
			stats.Profanity++
		case TooShort:
			stats.TooShort++
		case HighSymbolRatio:
			stats.HighSymbolRatio++
		}
	}
	return clean, stats
}

// Check runs the checks in order and reports the first that matches.
func (f *Filter) Check(message string) Reason {
	text := strings.TrimSpace(message)
	lower := strings.ToLower(text)
	normalized := strings.TrimRight(lower, "!?.")

	if _, ok := f.greetings[normalized]; ok {
		return Greeting
	}
	if _, ok := f.junk[normalized]; ok {
		return JunkWord
	}
	for _, p := range f.profanity {
		if strings.Contains(lower, p) {
			return Profanity
		}
	}
	if wordChars(text) < MinWordChars {
		return TooShort
	}
	if symbolRatio(text) > MaxSymbolRatio {
		return HighSymbolRatio
	}
	return Kept
}

// wordChars counts letters, digits and underscores.
func wordChars(s string) int {
	n := 0
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func symbolRatio(s string) float64 {
	total, plain := 0, 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			plain++
		}
	}
	if total == 0 {
		return 1
	}
	return 1 - float64(plain)/float64(total)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
