package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-insights-go/internal/pipeline"
	"topic-insights-go/internal/report"
	"topic-insights-go/internal/store/memstore"
	"topic-insights-go/internal/types"
)

type fakeRunner struct {
	status types.RunStatus
	err    error
	got    []types.PeriodType
}

func (f *fakeRunner) Run(_ context.Context, clientID string, period types.PeriodType) (types.RunResult, error) {
	f.got = append(f.got, period)
	if f.err != nil {
		return types.RunResult{}, f.err
	}
	return types.RunResult{
		RunID:    "run-1",
		ClientID: clientID,
		Period:   period,
		Status:   f.status,
		Topics:   []types.Topic{{RawTopic: types.RawTopic{Name: "Cennik", Count: 4}, Rank: 1}},
	}, nil
}

type brokenReader struct{}

func (brokenReader) GetTopics(context.Context, string, types.PeriodType) (types.TopicSet, error) {
	return types.TopicSet{}, errors.New("connection reset")
}

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	mem := memstore.New()
	require.NoError(t, mem.ReplaceTopics(context.Background(), "acme", types.PeriodDaily, types.PeriodBounds{}, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Cennik", Count: 9}, Rank: 1},
		{RawTopic: types.RawTopic{Name: "Integracje", Count: 3}, Rank: 2, IsGap: true, GapReason: "empty response"},
	}))
	require.NoError(t, mem.ReplaceTopics(context.Background(), "acme", types.PeriodWeekly, types.PeriodBounds{}, []types.Topic{
		{RawTopic: types.RawTopic{Name: "Dostawa", Count: 40}, Rank: 1, IsGap: false},
	}))
	return mem
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: memstore.New()})

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestTrending(t *testing.T) {
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: seeded(t)})

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"default daily", "/clients/acme/trending-topics", []string{"Cennik", "Integracje"}},
		{"weekly", "/clients/acme/trending-topics?period=weekly", []string{"Dostawa"}},
		{"invalid falls back to daily", "/clients/acme/trending-topics?period=monthly", []string{"Cennik", "Integracje"}},
		{"unknown client", "/clients/globex/trending-topics", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var rep report.TrendingReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
			var names []string
			for _, topic := range rep.Topics {
				names = append(names, topic.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), rep.Summary.TotalTopics)
		})
	}
}

func TestTrendingStoreError(t *testing.T) {
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: brokenReader{}})
	rec := do(t, h, http.MethodGet, "/clients/acme/trending-topics", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection reset")
}

func TestGaps(t *testing.T) {
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: seeded(t)})

	rec := do(t, h, http.MethodGet, "/clients/acme/trending-topics/gaps", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.GapsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Equal(t, 1, rep.Count)
	assert.Equal(t, "Integracje", rep.Gaps[0].TopicName)
	assert.Equal(t, "empty response", rep.Gaps[0].GapReason)
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		target string
		code   int
		period types.PeriodType
	}{
		{"success", &fakeRunner{status: types.StatusSuccess}, "/clients/acme/trending-topics/analyze?period=weekly", http.StatusOK, types.PeriodWeekly},
		{"no data is still ok", &fakeRunner{status: types.StatusNoData}, "/clients/acme/trending-topics/analyze", http.StatusOK, types.PeriodDaily},
		{"save failed", &fakeRunner{status: types.StatusSaveFailed}, "/clients/acme/trending-topics/analyze", http.StatusInternalServerError, types.PeriodDaily},
		{"rejected", &fakeRunner{err: pipeline.ErrInvalidPeriod}, "/clients/acme/trending-topics/analyze", http.StatusBadRequest, types.PeriodDaily},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(Deps{Runner: tt.runner, Topics: memstore.New()})
			rec := do(t, h, http.MethodPost, tt.target, "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, []types.PeriodType{tt.period}, tt.runner.got)

			if tt.runner.err == nil {
				var res types.RunResult
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.Equal(t, tt.runner.status, res.Status)
				assert.Len(t, res.Topics, 1)
			}
		})
	}
}

func TestAnalyzeRequiresPost(t *testing.T) {
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: memstore.New()})
	rec := do(t, h, http.MethodGet, "/clients/acme/trending-topics/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestMessages(t *testing.T) {
	mem := memstore.New()
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: mem, Messages: mem})

	body := `{"messages":[
		{"session_id":"s1","role":"user","text":"Ile kosztuje abonament?","timestamp":"2025-06-01T10:00:00Z"},
		{"session_id":"s1","role":"assistant","text":"99 zł miesięcznie.","timestamp":"2025-06-01T10:00:05Z"}
	]}`
	rec := do(t, h, http.MethodPost, "/clients/acme/messages", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"stored":2}`, rec.Body.String())

	msgs, err := mem.SessionMessages(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"messages":`, "invalid JSON body"},
		{"empty", `{"messages":[]}`, "messages must not be empty"},
		{"missing session", `{"messages":[{"role":"user","text":"hej"}]}`, "session_id is required"},
		{"bad role", `{"messages":[{"session_id":"s","role":"system","text":"x"}]}`, `unsupported role \"system\"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/clients/acme/messages", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestIngestWithoutWriter(t *testing.T) {
	h := NewRouter(Deps{Runner: &fakeRunner{}, Topics: memstore.New()})
	rec := do(t, h, http.MethodPost, "/clients/acme/messages", `{"messages":[]}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
