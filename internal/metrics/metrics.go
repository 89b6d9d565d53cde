// Package metrics exposes pipeline counters on a dedicated Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"topic-insights-go/internal/types"
)

var (
	Registry = prometheus.NewRegistry()

	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topic_pipeline_runs_total",
		Help: "Pipeline runs by period type and terminal status.",
	}, []string{"period", "status"})

	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topic_pipeline_run_duration_seconds",
		Help:    "Wall time of one pipeline run.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"period"})

	LLMTokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topic_pipeline_llm_tokens_total",
		Help: "Tokens consumed by LLM calls.",
	}, []string{"call"})

	FilteredMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topic_pipeline_filtered_messages_total",
		Help: "Messages dropped by the junk filter, by reason.",
	}, []string{"reason"})
)

func init() {
	Registry.MustRegister(
		Runs, RunDuration, LLMTokens, FilteredMessages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveRun(period types.PeriodType, status types.RunStatus, took time.Duration) {
	Runs.WithLabelValues(string(period), string(status)).Inc()
	RunDuration.WithLabelValues(string(period)).Observe(took.Seconds())
}

func ObserveTokens(call string, n int) {
	if n > 0 {
		LLMTokens.WithLabelValues(call).Add(float64(n))
	}
}

func ObserveFiltered(s types.FilterStats) {
	for reason, n := range map[string]int{
		"greeting":          s.Greetings,
		"junk_word":         s.JunkWords,
		"profanity":         s.Profanity,
		"too_short":         s.TooShort,
		"high_symbol_ratio": s.HighSymbolRatio,
	} {
		if n > 0 {
			FilteredMessages.WithLabelValues(reason).Add(float64(n))
		}
	}
}
