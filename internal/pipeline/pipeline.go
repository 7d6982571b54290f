package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/LJTian/MedAIRadar/internal/collector"
	"github.com/LJTian/MedAIRadar/internal/config"
	"github.com/LJTian/MedAIRadar/internal/metrics"
	"github.com/LJTian/MedAIRadar/internal/processor"
	"golang.org/x/sync/errgroup"
)

var errFetchPanic = errors.New("fetcher panicked")

// Aggregator 并发抓取所有 RSS 源，再抓取 arXiv，合并后统一清洗、标注、排序与按时间窗过滤
type Aggregator struct {
	feeds     []collector.Fetcher
	arxiv     collector.Fetcher
	processor *processor.SimpleProcessor
	workers   int
	now       func() time.Time
}

func New(feeds []collector.Fetcher, arxiv collector.Fetcher, workers int) *Aggregator {
	if workers <= 0 {
		workers = config.DefaultFeedWorkers
	}
	return &Aggregator{
		feeds:     feeds,
		arxiv:     arxiv,
		processor: processor.NewSimpleProcessor(),
		workers:   workers,
		now:       config.Now,
	}
}

// NewFromConfig 按 Feed Registry 和 arXiv 固定查询组装流水线
func NewFromConfig(cfg *config.Config) *Aggregator {
	registry := config.Feeds()
	feeds := make([]collector.Fetcher, 0, len(registry))
	for _, f := range registry {
		feeds = append(feeds, collector.NewRSSFetcher(f.URL, f.Source, cfg.FeedTimeout))
	}
	arxiv := collector.NewArxivFetcher(cfg.ArxivEndpoint, config.ArxivQuery, cfg.ArxivMaxResults)
	return New(feeds, arxiv, cfg.FeedWorkers)
}

// News 对外入口，days <= 0 时使用默认的 30 天
func (a *Aggregator) News(ctx context.Context, days int) []processor.Record {
	if days <= 0 {
		days = config.DefaultDays
	}
	return a.Aggregate(ctx, days)
}

// Aggregate 执行一轮完整采集。任何阶段失败都只会让结果变少或为空，不向调用方返回错误。
func (a *Aggregator) Aggregate(ctx context.Context, days int) (out []processor.Record) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("aggregate failed", "panic", r)
			out = []processor.Record{}
		}
	}()

	merged := a.fetchFeeds(ctx)
	merged = append(merged, a.fetchArxiv(ctx)...)
	if len(merged) == 0 {
		slog.Warn("aggregate: no items from any source")
		return []processor.Record{}
	}

	records := a.processor.Process(merged)
	metrics.RecordDropped("unparseable_date", len(merged)-len(records))

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	cutoff := wallClock(a.now()).AddDate(0, 0, -days)
	out = make([]processor.Record, 0, len(records))
	for _, r := range records {
		if !r.Date.Before(cutoff) {
			out = append(out, r)
		}
	}
	metrics.RecordDropped("outside_window", len(records)-len(out))
	metrics.RecordRun(time.Since(start).Seconds(), len(out))

	slog.Info("aggregate done",
		"days", days,
		"fetched", len(merged),
		"dated", len(records),
		"returned", len(out),
		"elapsed", time.Since(start))
	return out
}

// fetchFeeds 有界并发抓取 RSS 源；每个任务只写自己的结果槽，全部结束后再合并
func (a *Aggregator) fetchFeeds(ctx context.Context) []collector.NewsItem {
	results := make([][]collector.NewsItem, len(a.feeds))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, f := range a.feeds {
		i, f := i, f
		g.Go(func() error {
			results[i] = runFetcher(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	var merged []collector.NewsItem
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged
}

func (a *Aggregator) fetchArxiv(ctx context.Context) []collector.NewsItem {
	if a.arxiv == nil {
		return nil
	}
	return runFetcher(ctx, a.arxiv)
}

// runFetcher 单个源的失败（含 panic）只记录日志，返回空结果
func runFetcher(ctx context.Context, f collector.Fetcher) (items []collector.NewsItem) {
	name := f.Name()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fetch panicked", "source", name, "panic", r)
			metrics.RecordFetch(name, 0, errFetchPanic)
			items = nil
		}
	}()

	items, err := f.Fetch(ctx)
	metrics.RecordFetch(name, len(items), err)
	if err != nil {
		slog.Error("fetch failed", "source", name, "error", err)
		return nil
	}
	if len(items) == 0 {
		slog.Info("fetch got 0 items", "source", name)
	}
	return items
}

// wallClock 把当前墙上时间原样当作 UTC，与只有日期、按 UTC 零点表示的记录比较
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
