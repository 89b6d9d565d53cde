// Package pipeline runs one topic-mining pass for a client and period type:
// collect, filter, detect gaps, cluster, select, enrich and persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"topic-insights-go/internal/actionable"
	"topic-insights-go/internal/aggregator"
	"topic-insights-go/internal/filter"
	"topic-insights-go/internal/gaps"
	"topic-insights-go/internal/intent"
	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/metrics"
	"topic-insights-go/internal/threshold"
	"topic-insights-go/internal/trend"
	"topic-insights-go/internal/types"
)

var (
	ErrInvalidPeriod = errors.New("invalid period type")
	ErrMissingClient = errors.New("client id is required")
)

const fetchConcurrency = 8

// ConversationSource lists sessions and returns their messages.
type ConversationSource interface {
	SessionIDs(ctx context.Context, clientID string, since time.Time) ([]string, error)
	SessionMessages(ctx context.Context, sessionID string) ([]types.Message, error)
}

// TopicStore persists snapshots with full-replace semantics.
type TopicStore interface {
	ReplaceTopics(ctx context.Context, clientID string, period types.PeriodType, bounds types.PeriodBounds, topics []types.Topic) error
	GetTopics(ctx context.Context, clientID string, period types.PeriodType) (types.TopicSet, error)
}

// Clusterer groups questions into raw topics. It reports failure through
// ClusteringResult.Success rather than an error.
type Clusterer interface {
	Cluster(ctx context.Context, questions []string, maxTopics int) types.ClusteringResult
}

type Options struct {
	Hours          int
	MaxSessions    int
	MaxTopics      int
	ClusterTimeout time.Duration
	InsightTimeout time.Duration
	Now            func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Hours <= 0 {
		o.Hours = 24
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = 100
	}
	if o.MaxTopics <= 0 {
		o.MaxTopics = 15
	}
	if o.ClusterTimeout <= 0 {
		o.ClusterTimeout = 60 * time.Second
	}
	if o.InsightTimeout <= 0 {
		o.InsightTimeout = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Deps are the collaborators of a Runner. Filter, Intents and Gaps default to
// the built-in vocabularies. Insights run on daily periods only; a nil
// Insights skips the step.
type Deps struct {
	Source    ConversationSource
	Store     TopicStore
	Clusterer Clusterer
	Insights  *actionable.Generator
	Filter    *filter.Filter
	Intents   *intent.Classifier
	Gaps      *gaps.Detector
	Log       *logger.Logger
}

type Runner struct {
	src       ConversationSource
	store     TopicStore
	clusterer Clusterer
	insights  *actionable.Generator
	filter    *filter.Filter
	intents   *intent.Classifier
	gaps      *gaps.Detector
	trends    *trend.Comparator
	opts      Options
	log       *logger.Logger
}

func NewRunner(d Deps, opts Options) *Runner {
	if d.Filter == nil {
		d.Filter = filter.Default()
	}
	if d.Intents == nil {
		d.Intents = intent.Default()
	}
	if d.Gaps == nil {
		d.Gaps = gaps.Default()
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	return &Runner{
		src:       d.Source,
		store:     d.Store,
		clusterer: d.Clusterer,
		insights:  d.Insights,
		filter:    d.Filter,
		intents:   d.Intents,
		gaps:      d.Gaps,
		trends:    trend.NewComparator(d.Store),
		opts:      opts.withDefaults(),
		log:       d.Log.Component("pipeline"),
	}
}

// run carries the state of one invocation.
type run struct {
	res   types.RunResult
	log   *logrus.Entry
	start time.Time
}

func (r *run) enter(s types.State) {
	r.res.Trace = append(r.res.Trace, s)
	r.log.WithField("state", s).Info("pipeline state")
}

// Run executes one pass. The returned error is non-nil only for invalid
// arguments; collaborator failures end the run with a terminal status.
func (p *Runner) Run(ctx context.Context, clientID string, period types.PeriodType) (types.RunResult, error) {
	if clientID == "" {
		return types.RunResult{}, ErrMissingClient
	}
	if !period.Valid() {
		return types.RunResult{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	now := p.opts.Now()
	runID := uuid.NewString()
	st := &run{
		start: now,
		log:   p.log.WithRun(runID, clientID, string(period)),
		res: types.RunResult{
			RunID:     runID,
			ClientID:  clientID,
			Period:    period,
			Bounds:    types.PeriodBounds{Start: now.Add(-period.Window(p.opts.Hours)), End: now},
			StartedAt: now,
		},
	}

	p.execute(ctx, st)

	took := p.opts.Now().Sub(st.start)
	st.res.DurationMs = took.Milliseconds()
	metrics.ObserveRun(period, st.res.Status, took)
	st.log.WithFields(logrus.Fields{
		"status":      st.res.Status,
		"topics":      len(st.res.Topics),
		"duration_ms": st.res.DurationMs,
	}).Info("pipeline finished")
	return st.res, nil
}

func (p *Runner) execute(ctx context.Context, st *run) {
	res := &st.res

	st.enter(types.StateCollecting)
	messages, sessions, err := p.collect(ctx, st)
	if err != nil {
		st.log.WithError(err).Warn("session listing failed")
		res.Status, res.Message = types.StatusNoData, err.Error()
		return
	}
	questions := gaps.UserTexts(messages)
	res.Sessions = sessions
	res.TotalMessages = len(questions)
	if sessions == 0 {
		res.Status, res.Message = types.StatusNoData, "no sessions found"
		return
	}

	st.enter(types.StateFiltering)
	clean, fstats := p.filter.Apply(questions)
	metrics.ObserveFiltered(fstats)
	res.FilterStats = &fstats
	res.CleanMessages = len(clean)
	if len(clean) == 0 {
		res.Status, res.Message = types.StatusNoQuestions, "all messages were filtered out"
		return
	}

	var gapResults []types.GapResult
	if res.Period == types.PeriodDaily {
		st.enter(types.StateExtractingGaps)
		var gstats types.GapStats
		gapResults, gstats = p.gaps.Analyze(gaps.PairTurns(messages))
		res.GapStats = &gstats
		res.GapsDetected = gstats.Gaps
	} else {
		st.enter(types.StateGapsSkipped)
	}

	st.enter(types.StateClustering)
	cctx, cancel := context.WithTimeout(ctx, p.opts.ClusterTimeout)
	clustered := p.clusterer.Cluster(cctx, clean, p.opts.MaxTopics)
	cancel()
	res.TokensUsed += clustered.TokensUsed
	if !clustered.Success {
		res.Status, res.Message = types.StatusClusteringFailed, clustered.Error
		return
	}
	res.TopicsFound = len(clustered.Topics)

	st.enter(types.StateThresholding)
	selected := threshold.Select(clustered.Topics)
	res.Threshold = &types.ThresholdResult{
		CutoffIndex: selected.CutoffIndex,
		CutoffRatio: selected.CutoffRatio,
		TotalTopics: selected.TotalTopics,
	}
	res.SignificantTopics = len(selected.SignificantTopics)

	st.enter(types.StateEnriching)
	topics, err := p.trends.Compare(ctx, res.ClientID, res.Period, selected.SignificantTopics)
	if err != nil {
		st.log.WithError(err).Warn("trend lookup failed, all topics marked new")
	}
	topics = aggregator.EnrichIntents(p.intents, topics, clean)
	if res.Period == types.PeriodDaily {
		topics = aggregator.AnnotateGaps(topics, gapResults)
	} else {
		topics = aggregator.ClearGaps(topics)
	}
	if p.insights != nil && res.Period == types.PeriodDaily {
		ictx, cancel := context.WithTimeout(ctx, p.opts.InsightTimeout)
		topics = p.insights.Generate(ictx, topics)
		cancel()
	}
	res.Topics = topics
	res.Summary = types.Summarize(topics)

	st.enter(types.StatePersisting)
	if err := p.store.ReplaceTopics(ctx, res.ClientID, res.Period, res.Bounds, topics); err != nil {
		st.log.WithError(err).Error("persisting topics failed")
		res.Status, res.Message = types.StatusSaveFailed, err.Error()
		return
	}

	st.enter(types.StateDone)
	res.Status = types.StatusSuccess
}

// collect lists the client's sessions in the window and fetches them in
// parallel. Messages are merged in session order; a failing session
// contributes nothing.
func (p *Runner) collect(ctx context.Context, st *run) ([]types.Message, int, error) {
	listed, err := p.src.SessionIDs(ctx, st.res.ClientID, st.res.Bounds.Start)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	ids := uniqueCapped(listed, p.opts.MaxSessions)
	if len(ids) == 0 {
		return nil, 0, nil
	}

	perSession := make([][]types.Message, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			msgs, err := p.src.SessionMessages(gctx, id)
			if err != nil {
				st.log.WithError(err).WithField("session_id", id).Warn("session fetch failed")
				return nil
			}
			for j := range msgs {
				if msgs[j].SessionID == "" {
					msgs[j].SessionID = id
				}
			}
			perSession[i] = msgs
			return nil
		})
	}
	_ = g.Wait()

	var out []types.Message
	for _, msgs := range perSession {
		out = append(out, msgs...)
	}
	return out, len(ids), nil
}

func uniqueCapped(ids []string, limit int) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, min(len(ids), limit))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}
