// Package intent tallies buying and comparing vocabulary to label what a
// user is after.
package intent

import (
	"math"
	"strings"

	"topic-insights-go/internal/types"
)

const baseConfidence = 0.5

type Vocabulary struct {
	Buying    []string `yaml:"buying"`
	Comparing []string `yaml:"comparing"`
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Buying: []string{
			// Polish
			"kupić", "kupię", "chcę kupić", "zamówić", "zamawiam", "zamówienie",
			"ile kosztuje", "jaka cena", "cennik", "cena", "ceny", "koszt", "kosztuje",
			"oferta", "promocja", "rabat", "zniżka", "płatność", "płacić", "zapłacić",
			"faktura", "rachunek", "abonament", "subskrypcja", "pakiet",
			"kup", "zakup", "zakupić", "nabyć", "wziąć",
			// English
			"buy", "purchase", "order", "price", "pricing", "cost", "how much",
			"offer", "discount", "payment", "pay", "subscribe", "subscription",
		},
		Comparing: []string{
			// Polish
			"różnica", "różnice", "porównaj", "porównanie", "lepszy", "lepsze",
			"gorszy", "vs", "versus", "alternatywa", "alternatywnie", "zamiast",
			"konkurencja", "inni", "inne opcje", "podobne", "wybrać", "wybór",
			"który", "która", "które", "jaki", "jaka", "jakie",
			"zalety", "wady", "pros", "cons",
			// English
			"difference", "compare", "comparison", "better", "worse",
			"alternative", "instead", "competitor", "other options", "similar",
			"which", "choose", "choice", "advantages", "disadvantages",
		},
	}
}

type Classifier struct {
	buying    []string
	comparing []string
}

func New(v Vocabulary) *Classifier {
	return &Classifier{buying: lowerAll(v.Buying), comparing: lowerAll(v.Comparing)}
}

var defaultClassifier = New(DefaultVocabulary())

func Default() *Classifier { return defaultClassifier }

// Classify uses the default vocabulary.
func Classify(message string) (types.Intent, float64) {
	return defaultClassifier.Classify(message)
}

// Breakdown uses the default vocabulary.
func Breakdown(messages []string) map[types.Intent]float64 {
	return defaultClassifier.Breakdown(messages)
}

// Classify returns the dominant intent and a confidence in [0,1]. Buying wins
// ties with comparing.
func (c *Classifier) Classify(message string) (types.Intent, float64) {
	if message == "" {
		return types.IntentInfoSeeking, baseConfidence
	}
	lower := strings.ToLower(message)
	buying := countMatches(lower, c.buying)
	comparing := countMatches(lower, c.comparing)

	switch {
	case buying > 0 && buying >= comparing:
		return types.IntentBuying, confidence(buying)
	case comparing > 0:
		return types.IntentComparing, confidence(comparing)
	default:
		return types.IntentInfoSeeking, baseConfidence
	}
}

// Counts tallies the dominant intent of every message.
func (c *Classifier) Counts(messages []string) map[types.Intent]int {
	counts := map[types.Intent]int{
		types.IntentBuying:      0,
		types.IntentComparing:   0,
		types.IntentInfoSeeking: 0,
	}
	for _, m := range messages {
		in, _ := c.Classify(m)
		counts[in]++
	}
	return counts
}

// Breakdown returns per-intent percentages rounded to one decimal.
func (c *Classifier) Breakdown(messages []string) map[types.Intent]float64 {
	if len(messages) == 0 {
		return map[types.Intent]float64{
			types.IntentBuying:      0,
			types.IntentComparing:   0,
			types.IntentInfoSeeking: 100,
		}
	}
	counts := c.Counts(messages)
	total := float64(len(messages))
	out := make(map[types.Intent]float64, len(counts))
	for in, n := range counts {
		out[in] = math.Round(float64(n)/total*1000) / 10
	}
	return out
}

func confidence(matches int) float64 {
	return math.Min(baseConfidence+0.15*float64(matches), 1.0)
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
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
