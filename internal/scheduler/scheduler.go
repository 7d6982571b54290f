package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/LJTian/MedAIRadar/internal/processor"
	"github.com/robfig/cron/v3"
)

// Aggregator 流水线入口
type Aggregator interface {
	News(ctx context.Context, days int) []processor.Record
}

// Sink 采集结果的去处：结果缓存与归档
type Sink interface {
	CacheNews(ctx context.Context, days int, records []processor.Record, ttl time.Duration) error
	ArchiveRun(ctx context.Context, days int, records []processor.Record) error
}

// 延迟执行首轮采集，避免与服务启动争抢资源
const defaultStartupDelay = 15 * time.Second

type Scheduler struct {
	cron     *cron.Cron
	agg      Aggregator
	sink     Sink
	days     int
	cacheTTL time.Duration

	startupDelay time.Duration
	warmup       *time.Timer
	warmupDone   chan struct{}
}

func New(spec string, agg Aggregator, sink Sink, days int, cacheTTL time.Duration) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:     c,
		agg:      agg,
		sink:     sink,
		days:     days,
		cacheTTL: cacheTTL,

		startupDelay: defaultStartupDelay,
	}

	_, err := c.AddFunc(spec, func() { s.runOnce() })
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	done := make(chan struct{})
	s.warmupDone = done
	s.warmup = time.AfterFunc(s.startupDelay, func() {
		defer close(done)
		s.runOnce()
	})
}

// Stop 取消尚未触发的首轮采集，并等待已开始的采集结束
func (s *Scheduler) Stop() {
	if s.warmup != nil && !s.warmup.Stop() {
		<-s.warmupDone
	}
	<-s.cron.Stop().Done()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() int {
	return s.runOnce()
}

func (s *Scheduler) runOnce() int {
	slog.Info("start refresh job", "days", s.days)
	ctx := context.Background()

	records := s.agg.News(ctx, s.days)
	if len(records) == 0 {
		slog.Warn("refresh job got 0 records")
		return 0
	}

	if err := s.sink.CacheNews(ctx, s.days, records, s.cacheTTL); err != nil {
		slog.Error("refresh job: cache news failed", "error", err)
	}
	if err := s.sink.ArchiveRun(ctx, s.days, records); err != nil {
		slog.Error("refresh job: archive failed", "error", err)
	}

	slog.Info("refresh job done", "records", len(records))
	return len(records)
}
