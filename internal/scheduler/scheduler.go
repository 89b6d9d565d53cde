// Package scheduler triggers the daily and weekly pipeline runs per client.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/types"
)

// Runner is the pipeline entry point.
type Runner interface {
	Run(ctx context.Context, clientID string, period types.PeriodType) (types.RunResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
	log     *logger.Logger
}

// New builds a scheduler in UTC. Each job is skipped while its previous
// invocation is still running; a run that exceeds timeout is cancelled.
func New(r Runner, timeout time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	log = log.Component("scheduler")
	cl := cronLogger{log.Entry}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{
		cron:    c,
		runner:  r,
		timeout: timeout,
		log:     log,
	}
}

// Schedule adds one job per client for period on the cron spec.
func (s *Scheduler) Schedule(spec string, period types.PeriodType, clientIDs []string) error {
	for _, id := range clientIDs {
		if _, err := s.cron.AddJob(spec, s.job(id, period)); err != nil {
			return fmt.Errorf("schedule %s %q: %w", period.Key(id), spec, err)
		}
		s.log.WithFields(logrus.Fields{"client_id": id, "period_type": period, "spec": spec}).Info("job scheduled")
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
}

// Stop prevents new runs and returns a context done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) job(clientID string, period types.PeriodType) cron.Job {
	return cron.FuncJob(func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		res, err := s.runner.Run(ctx, clientID, period)
		entry := s.log.WithFields(logrus.Fields{"client_id": clientID, "period_type": period})
		if err != nil {
			entry.WithError(err).Error("scheduled run rejected")
			return
		}
		entry.WithFields(logrus.Fields{"run_id": res.RunID, "status": res.Status}).Info("scheduled run finished")
	})
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
