package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	arxivSource        = "arXiv"
	arxivClientTimeout = 30 * time.Second
)

// ArxivFetcher 通过 arXiv API 按提交时间倒序检索论文，只请求第一页
type ArxivFetcher struct {
	Endpoint   string
	Query      string
	MaxResults int
	Client     *http.Client
}

func NewArxivFetcher(endpoint, query string, maxResults int) *ArxivFetcher {
	return &ArxivFetcher{
		Endpoint:   endpoint,
		Query:      query,
		MaxResults: maxResults,
		Client:     &http.Client{Timeout: arxivClientTimeout},
	}
}

func (a *ArxivFetcher) Name() string {
	return arxivSource
}

// SearchURL 构造 arXiv 查询地址
func (a *ArxivFetcher) SearchURL() string {
	q := url.Values{}
	q.Set("search_query", a.Query)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(a.MaxResults))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	return a.Endpoint + "?" + q.Encode()
}

func (a *ArxivFetcher) Fetch(ctx context.Context) ([]NewsItem, error) {
	fp := newFeedParser()
	if a.Client != nil {
		fp.Client = a.Client
	}

	feed, err := fp.ParseURLWithContext(a.SearchURL(), ctx)
	if err != nil {
		return nil, fmt.Errorf("arxiv: query: %w", err)
	}

	items := make([]NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, NewsItem{
			Title:        orDefault(flattenLines(it.Title), NoTitle),
			Link:         orDefault(it.Link, NoLink),
			PublishedRaw: orDefault(it.Published, NoDate),
			Description:  flattenLines(it.Description),
			Source:       arxivSource,
		})
	}
	if a.MaxResults > 0 && len(items) > a.MaxResults {
		items = items[:a.MaxResults]
	}

	slog.Info("arxiv fetched", "items", len(items))
	return items, nil
}

// arXiv 的标题和摘要带硬换行
func flattenLines(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
