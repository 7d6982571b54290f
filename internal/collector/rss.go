package collector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
)

const (
	rssUserAgent      = "MedAIRadarBot/1.0"
	rssDefaultTimeout = 20 * time.Second
)

// RSSFetcher 抓取单个 RSS/Atom 源，每轮只尝试一次
type RSSFetcher struct {
	URL     string
	Source  string
	Timeout time.Duration
}

func NewRSSFetcher(url, source string, timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = rssDefaultTimeout
	}
	return &RSSFetcher{URL: url, Source: source, Timeout: timeout}
}

func (f *RSSFetcher) Name() string {
	return f.Source
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rss %s: %w", f.Source, err)
	}

	c := colly.NewCollector(
		colly.UserAgent(rssUserAgent),
	)
	c.SetRequestTimeout(f.Timeout)
	c.WithTransport(ctxTransport{ctx: ctx, base: http.DefaultTransport})

	var (
		feed     *gofeed.Feed
		parseErr error
	)
	c.OnResponse(func(r *colly.Response) {
		feed, parseErr = newFeedParser().Parse(bytes.NewReader(r.Body))
	})

	if err := c.Visit(f.URL); err != nil {
		return nil, fmt.Errorf("rss %s: fetch %s: %w", f.Source, f.URL, err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("rss %s: parse %s: %w", f.Source, f.URL, parseErr)
	}
	if feed == nil {
		return nil, fmt.Errorf("rss %s: empty response from %s", f.Source, f.URL)
	}

	items := convertFeed(feed, f.Source)
	slog.Info("rss fetched", "source", f.Source, "items", len(items))
	return items, nil
}

// convertFeed 把 gofeed 的条目映射为 NewsItem。
// gofeed 已将 RSS description 与 Atom summary 统一到 Description，content:encoded / content 在 Content
func convertFeed(feed *gofeed.Feed, source string) []NewsItem {
	items := make([]NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, NewsItem{
			Title:        orDefault(it.Title, NoTitle),
			Link:         orDefault(it.Link, NoLink),
			PublishedRaw: orDefault(it.Published, NoDate),
			Description:  firstNonEmpty(it.Description, it.Content),
			Source:       source,
		})
	}
	return items
}

// ctxTransport 让 colly 发出的请求跟随调用方的 context 取消
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
