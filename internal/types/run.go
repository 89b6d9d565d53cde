package types

import "time"

// State is a step of one pipeline run.
type State string

const (
	StateCollecting     State = "collecting"
	StateFiltering      State = "filtering"
	StateExtractingGaps State = "extracting_gaps"
	StateGapsSkipped    State = "gaps_skipped"
	StateClustering     State = "clustering"
	StateThresholding   State = "thresholding"
	StateEnriching      State = "enriching"
	StatePersisting     State = "persisting"
	StateDone           State = "done"
)

// RunStatus is the terminal outcome of a run.
type RunStatus string

const (
	StatusSuccess          RunStatus = "success"
	StatusNoData           RunStatus = "no_data"
	StatusNoQuestions      RunStatus = "no_questions"
	StatusClusteringFailed RunStatus = "clustering_failed"
	StatusSaveFailed       RunStatus = "save_failed"
)

type RunResult struct {
	RunID             string           `json:"run_id"`
	Status            RunStatus        `json:"status"`
	Message           string           `json:"message,omitempty"`
	ClientID          string           `json:"client_id"`
	Period            PeriodType       `json:"period_type"`
	Bounds            PeriodBounds     `json:"period"`
	Trace             []State          `json:"trace"`
	Sessions          int              `json:"sessions"`
	TotalMessages     int              `json:"total_messages"` // user messages only
	CleanMessages     int              `json:"clean_messages"`
	TopicsFound       int              `json:"topics_found"`
	SignificantTopics int              `json:"significant_topics"`
	GapsDetected      int              `json:"gaps_detected"`
	TokensUsed        int              `json:"tokens_used"`
	FilterStats       *FilterStats     `json:"filter_stats,omitempty"`
	GapStats          *GapStats        `json:"gap_stats,omitempty"`
	Threshold         *ThresholdResult `json:"threshold,omitempty"`
	Topics            []Topic          `json:"topics,omitempty"`
	Summary           Summary          `json:"summary"`
	StartedAt         time.Time        `json:"started_at"`
	DurationMs        int64            `json:"duration_ms"`
}
