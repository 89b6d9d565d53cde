package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-insights-go/internal/types"
)

type call struct {
	clientID string
	period   types.PeriodType
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	started chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, clientID string, period types.PeriodType) (types.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{clientID, period})
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return types.RunResult{Status: types.StatusSuccess}, f.err
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestScheduleAddsOneEntryPerClient(t *testing.T) {
	r := &fakeRunner{}
	s := New(r, time.Minute, nil)

	require.NoError(t, s.Schedule("0 2 * * *", types.PeriodDaily, []string{"acme", "globex"}))
	require.NoError(t, s.Schedule("0 3 * * 0", types.PeriodWeekly, []string{"acme"}))

	entries := s.cron.Entries()
	require.Len(t, entries, 3)

	for _, e := range entries {
		e.WrappedJob.Run()
	}
	assert.ElementsMatch(t, []call{
		{"acme", types.PeriodDaily}, {"globex", types.PeriodDaily}, {"acme", types.PeriodWeekly},
	}, r.calls)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := New(&fakeRunner{}, 0, nil)
	err := s.Schedule("every day at two", types.PeriodDaily, []string{"acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme#daily")
}

func TestJobSkipsWhileStillRunning(t *testing.T) {
	r := &fakeRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(r, 0, nil)
	require.NoError(t, s.Schedule("@hourly", types.PeriodDaily, []string{"acme"}))
	job := s.cron.Entries()[0].WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-r.started

	// the overlapping invocation returns at once
	job.Run()
	assert.Equal(t, 1, r.count())

	close(r.release)
	<-done
}

func TestJobLogsRejectedRun(t *testing.T) {
	r := &fakeRunner{err: errors.New("invalid period type")}
	s := New(r, 0, nil)
	s.job("acme", types.PeriodDaily).Run()
	assert.Equal(t, 1, r.count())
}

func TestStartStop(t *testing.T) {
	s := New(&fakeRunner{}, 0, nil)
	require.NoError(t, s.Schedule("@daily", types.PeriodDaily, []string{"acme"}))
	s.Start()
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
