package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/MedAIRadar/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAggregator struct {
	mu      sync.Mutex
	records []processor.Record
	days    []int
}

func (f *fakeAggregator) News(ctx context.Context, days int) []processor.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, days)
	return f.records
}

func (f *fakeAggregator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.days)
}

type fakeSink struct {
	cached     int
	archived   int
	ttl        time.Duration
	archiveErr error
}

func (f *fakeSink) CacheNews(ctx context.Context, days int, records []processor.Record, ttl time.Duration) error {
	f.cached += len(records)
	f.ttl = ttl
	return nil
}

func (f *fakeSink) ArchiveRun(ctx context.Context, days int, records []processor.Record) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	f.archived += len(records)
	return nil
}

func TestRunOnceCachesAndArchives(t *testing.T) {
	agg := &fakeAggregator{records: []processor.Record{{Title: "a"}, {Title: "b"}}}
	sink := &fakeSink{}

	s, err := New("0 * * * *", agg, sink, 14, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, s.RunOnce())
	assert.Equal(t, []int{14}, agg.days)
	assert.Equal(t, 2, sink.cached)
	assert.Equal(t, 2, sink.archived)
	assert.Equal(t, time.Hour, sink.ttl)
}

func TestRunOnceSkipsSinkOnEmptyResult(t *testing.T) {
	sink := &fakeSink{}
	s, err := New("0 * * * *", &fakeAggregator{}, sink, 30, time.Hour)
	require.NoError(t, err)

	assert.Zero(t, s.RunOnce())
	assert.Zero(t, sink.cached)
	assert.Zero(t, sink.archived)
}

func TestRunOnceArchiveFailureStillCaches(t *testing.T) {
	agg := &fakeAggregator{records: []processor.Record{{Title: "a"}}}
	sink := &fakeSink{archiveErr: errors.New("db down")}
	s, err := New("0 * * * *", agg, sink, 30, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, s.RunOnce())
	assert.Equal(t, 1, sink.cached)
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New("not a cron spec", &fakeAggregator{}, &fakeSink{}, 30, time.Hour)
	assert.Error(t, err)
}

func TestStartRunsWarmup(t *testing.T) {
	agg := &fakeAggregator{}
	s, err := New("0 0 1 1 *", agg, &fakeSink{}, 30, time.Hour)
	require.NoError(t, err)
	s.startupDelay = 10 * time.Millisecond

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return agg.calls() == 1 }, time.Second, 10*time.Millisecond)
}

func TestStopCancelsPendingWarmup(t *testing.T) {
	agg := &fakeAggregator{}
	s, err := New("0 0 1 1 *", agg, &fakeSink{}, 30, time.Hour)
	require.NoError(t, err)
	s.startupDelay = 100 * time.Millisecond

	s.Start()
	s.Stop()

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, agg.calls())
}

type slowAggregator struct {
	started  chan struct{}
	finished chan struct{}
}

func (f *slowAggregator) News(ctx context.Context, days int) []processor.Record {
	close(f.started)
	time.Sleep(100 * time.Millisecond)
	close(f.finished)
	return nil
}

func TestStopWaitsForRunningWarmup(t *testing.T) {
	agg := &slowAggregator{started: make(chan struct{}), finished: make(chan struct{})}
	s, err := New("0 0 1 1 *", agg, &fakeSink{}, 30, time.Hour)
	require.NoError(t, err)
	s.startupDelay = time.Millisecond

	s.Start()
	<-agg.started
	s.Stop()

	select {
	case <-agg.finished:
	default:
		t.Fatal("Stop returned before the warmup run finished")
	}
}
