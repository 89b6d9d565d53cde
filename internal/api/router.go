// Package api exposes the trending-topics HTTP surface.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/metrics"
	"topic-insights-go/internal/types"
)

// Runner runs one pipeline pass.
type Runner interface {
	Run(ctx context.Context, clientID string, period types.PeriodType) (types.RunResult, error)
}

type TopicReader interface {
	GetTopics(ctx context.Context, clientID string, period types.PeriodType) (types.TopicSet, error)
}

type MessageWriter interface {
	SaveMessages(ctx context.Context, clientID string, messages []types.Message) error
}

// Deps holds the router collaborators. A nil Messages disables ingestion.
type Deps struct {
	Runner   Runner
	Topics   TopicReader
	Messages MessageWriter
	Log      *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	h := &Handler{runner: d.Runner, topics: d.Topics, messages: d.Messages, log: d.Log.Component("api")}

	r := mux.NewRouter()
	r.Use(h.requestLog)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	c := r.PathPrefix("/clients/{client_id}").Subrouter()
	c.HandleFunc("/trending-topics", h.Trending).Methods(http.MethodGet)
	c.HandleFunc("/trending-topics/gaps", h.Gaps).Methods(http.MethodGet)
	c.HandleFunc("/trending-topics/analyze", h.Analyze).Methods(http.MethodPost)
	c.HandleFunc("/messages", h.IngestMessages).Methods(http.MethodPost)

	return r
}

func (h *Handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			return
		}
		h.log.WithRequest(r).
			WithField("status", sw.status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request handled")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
