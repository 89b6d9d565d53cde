package extractor

import (
	"context"
	"fmt"
	"strings"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/metrics"
)

const (
	maxInsightExamples = 5
	insightTokens      = 1000
	insightTemp        = 0.5
)

type InsightGenerator struct {
	llm Completer
	log *logger.Logger
}

func NewInsightGenerator(llm Completer, log *logger.Logger) *InsightGenerator {
	if log == nil {
		log = logger.Discard()
	}
	return &InsightGenerator{llm: llm, log: log.Component("insight")}
}

// Insight returns one sentence about the topic, or "" when the topic is
// incomplete or the call fails.
func (g *InsightGenerator) Insight(ctx context.Context, topicName string, examples []string) string {
	if topicName == "" || len(examples) == 0 {
		return ""
	}

	reply, tokens, err := g.llm.Complete(ctx, BuildInsightPrompt(topicName, examples), insightTemp, insightTokens)
	metrics.ObserveTokens("insight", tokens)
	if err != nil {
		g.log.WithError(err).WithField("topic", topicName).Warn("insight call failed")
		return ""
	}
	return cleanInsight(reply)
}

func BuildInsightPrompt(topicName string, examples []string) string {
	if len(examples) > maxInsightExamples {
		examples = examples[:maxInsightExamples]
	}
	var list strings.Builder
	for _, ex := range examples {
		list.WriteString("- ")
		list.WriteString(ex)
		list.WriteString("\n")
	}

	prompt := `Analizujesz najpopularniejszy temat pytań do chatbota w firmie usługowej.
Temat: "%s"

Przykładowe pytania użytkowników:
%s
Napisz JEDNO zdanie (max 20 słów) z obserwacją biznesową.
Wskaż, czego brakuje użytkownikom lub co jest dla nich niejasne.
Nie proponuj zmian w interfejsie, opisz problem informacyjny.

Przykład: "Użytkownicy często pytają o cennik, co sugeruje, że koszty są kluczowym czynnikiem decyzyjnym."

Twój insight:`

	return fmt.Sprintf(prompt, topicName, list.String())
}

func cleanInsight(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
