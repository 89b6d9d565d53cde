// Package gaps flags assistant answers that show the knowledge base had
// nothing useful to say.
package gaps

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"topic-insights-go/internal/types"
)

const (
	// MinAnswerLength is the shortest trimmed answer treated as substantive.
	MinAnswerLength = 50
	maxStoredAnswer = 200
)

type Vocabulary struct {
	DontKnow        []string `yaml:"dont_know"`
	HumanEscalation []string `yaml:"human_escalation"`
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		DontKnow: []string{
			// Polish
			"nie wiem", "nie jestem pewien", "nie jestem pewna",
			"nie mam informacji", "nie posiadam informacji",
			"nie mogę odpowiedzieć", "nie moge odpowiedziec",
			"nie znam odpowiedzi", "brak informacji",
			"niestety nie wiem", "niestety nie mam",
			"nie jestem w stanie", "nie potrafię odpowiedzieć",
			"przepraszam, ale nie wiem", "przepraszam, nie mam",
			// English
			"i don't know", "i do not know", "i'm not sure", "i am not sure",
			"i don't have information", "i cannot answer", "i can't answer",
			"sorry, i don't know", "unfortunately i don't know",
		},
		HumanEscalation: []string{
			// Polish
			"skontaktuj się", "zadzwoń", "napisz na", "wyślij email",
			"skontaktuj się z nami", "zadzwoń do nas", "napisz do nas",
			"proponuję kontakt", "polecam kontakt", "najlepiej zadzwonić",
			"lepiej porozmawiać", "porozmawiaj z", "skonsultuj z",
			"nasz konsultant", "nasz zespół", "nasi specjaliści",
			"umów rozmowę", "umów spotkanie", "umów się z",
			// English
			"contact us", "call us", "email us", "reach out",
			"speak to", "talk to", "consult with", "our team",
			"schedule a call", "book a meeting",
		},
	}
}

type Detector struct {
	dontKnow   []string
	escalation []string
}

func New(v Vocabulary) *Detector {
	return &Detector{dontKnow: lowerAll(v.DontKnow), escalation: lowerAll(v.HumanEscalation)}
}

var defaultDetector = New(DefaultVocabulary())

func Default() *Detector { return defaultDetector }

func Detect(question, answer string) types.GapResult {
	return defaultDetector.Detect(question, answer)
}

func Analyze(turns []types.ConversationTurn) ([]types.GapResult, types.GapStats) {
	return defaultDetector.Analyze(turns)
}

// Detect applies the rules in order; the first match wins.
func (d *Detector) Detect(question, answer string) types.GapResult {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return types.GapResult{
			IsGap:     true,
			Indicator: types.GapShortResponse,
			Reason:    "empty response",
			Question:  question,
		}
	}

	lower := strings.ToLower(answer)
	for _, phrase := range d.dontKnow {
		if strings.Contains(lower, phrase) {
			return types.GapResult{
				IsGap:     true,
				Indicator: types.GapDontKnow,
				Reason:    fmt.Sprintf("bot used phrase: %q", phrase),
				Question:  question,
				Answer:    truncate(answer, maxStoredAnswer),
			}
		}
	}
	for _, phrase := range d.escalation {
		if strings.Contains(lower, phrase) {
			return types.GapResult{
				IsGap:     true,
				Indicator: types.GapHumanEscalation,
				Reason:    fmt.Sprintf("bot suggested human contact: %q", phrase),
				Question:  question,
				Answer:    truncate(answer, maxStoredAnswer),
			}
		}
	}

	if n := utf8.RuneCountInString(trimmed); n < MinAnswerLength {
		return types.GapResult{
			IsGap:     true,
			Indicator: types.GapShortResponse,
			Reason:    fmt.Sprintf("short response (%d chars)", n),
			Question:  question,
			Answer:    answer,
		}
	}

	return types.GapResult{
		Indicator: types.GapNone,
		Question:  question,
		Answer:    truncate(answer, maxStoredAnswer),
	}
}

// Analyze keeps only the gaps and counts them per indicator.
func (d *Detector) Analyze(turns []types.ConversationTurn) ([]types.GapResult, types.GapStats) {
	stats := types.GapStats{Total: len(turns)}
	var gaps []types.GapResult

	for _, turn := range turns {
		res := d.Detect(turn.Question, turn.Answer)
		if !res.IsGap {
			continue
		}
		gaps = append(gaps, res)
		stats.Gaps++
		switch res.Indicator {
		case types.GapDontKnow:
			stats.DontKnow++
		case types.GapShortResponse:
			stats.ShortResponse++
		case types.GapHumanEscalation:
			stats.HumanEscalation++
		}
	}
	return gaps, stats
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
