package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/report"
	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

const maxIngestBody = 4 << 20

type Handler struct {
	runner   Runner
	topics   TopicReader
	messages MessageWriter
	log      *logger.Logger
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Trending handles GET /clients/{client_id}/trending-topics?period=.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["client_id"]
	period := types.ParsePeriod(r.URL.Query().Get("period"))

	set, err := h.snapshot(r, clientID, period)
	if err != nil {
		h.log.WithRequest(r).WithError(err).Error("trending topics lookup failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get trending topics: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, report.Trending(set))
}

// Gaps handles GET /clients/{client_id}/trending-topics/gaps. Gaps are only
// tracked for daily runs.
func (h *Handler) Gaps(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["client_id"]

	set, err := h.snapshot(r, clientID, types.PeriodDaily)
	if err != nil {
		h.log.WithRequest(r).WithError(err).Error("gaps lookup failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get gaps: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, report.Gaps(set))
}

// snapshot treats a missing snapshot as an empty one.
func (h *Handler) snapshot(r *http.Request, clientID string, period types.PeriodType) (types.TopicSet, error) {
	set, err := h.topics.GetTopics(r.Context(), clientID, period)
	if errors.Is(err, store.ErrNotFound) {
		return types.TopicSet{ClientID: clientID, Period: period}, nil
	}
	if err != nil {
		return types.TopicSet{}, err
	}
	return set, nil
}

// Analyze handles POST /clients/{client_id}/trending-topics/analyze and runs
// the pipeline synchronously.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["client_id"]
	period := types.ParsePeriod(r.URL.Query().Get("period"))
	reqLog := h.log.WithRequest(r).WithField("period_type", period)
	reqLog.Info("manual analysis requested")

	res, err := h.runner.Run(r.Context(), clientID, period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if res.Status == types.StatusSaveFailed {
		reqLog.WithField("run_id", res.RunID).Warn("analysis computed but not stored")
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

type ingestRequest struct {
	Messages []types.Message `json:"messages"`
}

// IngestMessages handles POST /clients/{client_id}/messages.
func (h *Handler) IngestMessages(w http.ResponseWriter, r *http.Request) {
	if h.messages == nil {
		writeError(w, http.StatusNotImplemented, "message ingestion is not supported by this store")
		return
	}
	clientID := mux.Vars(r)["client_id"]

	var req ingestRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	for i, m := range req.Messages {
		if err := validateMessage(m); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("messages[%d]: %v", i, err))
			return
		}
	}

	if err := h.messages.SaveMessages(r.Context(), clientID, req.Messages); err != nil {
		h.log.WithRequest(r).WithError(err).Error("saving messages failed")
		writeError(w, http.StatusInternalServerError, "failed to store messages")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"stored": len(req.Messages)})
}

func validateMessage(m types.Message) error {
	switch {
	case m.SessionID == "":
		return errors.New("session_id is required")
	case m.Role != types.RoleUser && m.Role != types.RoleAssistant:
		return fmt.Errorf("unsupported role %q", m.Role)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
