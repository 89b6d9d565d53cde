// Package extractor wraps the LLM gateway calls: question clustering and the
// one-sentence insight for the top topic.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/metrics"
	"topic-insights-go/internal/types"
)

const (
	MaxQuestions   = 500
	MaxTopicsLimit = 15
	clusterTokens  = 2000
	clusterTemp    = 0.3
)

type Clusterer struct {
	llm Completer
	log *logger.Logger
}

func NewClusterer(llm Completer, log *logger.Logger) *Clusterer {
	if log == nil {
		log = logger.Discard()
	}
	return &Clusterer{llm: llm, log: log.Component("clusterer")}
}

// Cluster never returns an error: any failure is reported through
// Success=false and Error.
func (c *Clusterer) Cluster(ctx context.Context, questions []string, maxTopics int) types.ClusteringResult {
	unique := PrepareQuestions(questions)
	if len(unique) == 0 {
		return types.ClusteringResult{Success: true}
	}

	prompt := BuildClusteringPrompt(unique, ClampTopics(maxTopics))
	reply, tokens, err := c.llm.Complete(ctx, prompt, clusterTemp, clusterTokens)
	metrics.ObserveTokens("cluster", tokens)
	if err != nil {
		c.log.WithError(err).Warn("clustering call failed")
		return types.ClusteringResult{Success: false, Error: err.Error()}
	}

	topics, err := ParseTopics(reply)
	if err != nil {
		c.log.WithError(err).WithField("reply_prefix", truncate(reply, 300)).Warn("clustering reply unusable")
		return types.ClusteringResult{
			RawResponse: reply,
			TokensUsed:  tokens,
			Success:     false,
			Error:       err.Error(),
		}
	}

	c.log.WithField("questions", len(unique)).WithField("topics", len(topics)).Info("questions clustered")
	return types.ClusteringResult{
		Topics:      topics,
		RawResponse: reply,
		TokensUsed:  tokens,
		Success:     true,
	}
}

// PrepareQuestions drops exact duplicates, keeping first-seen order, and caps
// the batch at MaxQuestions.
func PrepareQuestions(questions []string) []string {
	seen := make(map[string]struct{}, len(questions))
	out := make([]string, 0, min(len(questions), MaxQuestions))
	for _, q := range questions {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if len(out) == MaxQuestions {
			break
		}
	}
	return out
}

func ClampTopics(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxTopicsLimit:
		return MaxTopicsLimit
	default:
		return n
	}
}

func BuildClusteringPrompt(questions []string, maxTopics int) string {
	var list strings.Builder
	for _, q := range questions {
		list.WriteString("- ")
		list.WriteString(q)
		list.WriteString("\n")
	}

	prompt := `Zgrupuj poniższe pytania użytkowników chatbota w tematy (max %d tematów).

Dla każdego tematu podaj:
- topic_name: krótka nazwa tematu (max 3 słowa, po polsku)
- category: kategoria biznesowa z listy poniżej
- question_examples: lista 1-3 przykładowych pytań z tej grupy
- count: ile pytań należy do tego tematu

Kategorie:
1. "pricing" (oferta, cennik, koszty)
2. "features" (funkcje, możliwości, działanie)
3. "technical" (integracje, bezpieczeństwo, API)
4. "support" (kontakt, wsparcie, o firmie)
5. "other" (inne, off-topic)

Zasady:
- grupuj podobne pytania razem ("ile kosztuje?" i "jaka cena?" to jeden temat "Cennik")
- pomiń pytania, które nie pasują do żadnego tematu
- sortuj tematy od najczęstszych do najrzadszych

Pytania:
%s
Odpowiedz TYLKO poprawnym JSON, bez markdown:
[
  {"topic_name": "Cennik", "category": "pricing", "question_examples": ["ile kosztuje?", "jaka cena?"], "count": 15},
  {"topic_name": "Godziny otwarcia", "category": "support", "question_examples": ["kiedy jesteście otwarci?"], "count": 8}
]`

	return fmt.Sprintf(prompt, maxTopics, list.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
