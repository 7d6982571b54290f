package config

import "time"

const (
	DefaultDays            = 30
	DefaultFeedWorkers     = 10
	DefaultFeedTimeout     = 20 * time.Second
	DefaultArxivMaxResults = 50

	ArxivEndpoint = "http://export.arxiv.org/api/query"
	ArxivSource   = "arXiv"

	// AI/ML 分类 AND 医疗关键词
	ArxivQuery = "(cat:cs.AI OR cat:cs.LG OR cat:stat.ML) AND (medicine OR healthcare OR clinical OR medical)"
)

// Feed 一个 RSS 源及其展示名称
type Feed struct {
	URL    string
	Source string
}

// feeds 进程内只读，按此顺序合并结果
var feeds = []Feed{
	{URL: "https://www.sciencedaily.com/rss/computers_math/artificial_intelligence.xml", Source: "Science Daily"},
	{URL: "https://www.nature.com/subjects/medical-research.rss", Source: "Nature"},
	{URL: "https://www.technologyreview.com/feed/", Source: "MIT Technology Review"},
	{URL: "https://medicalfuturist.com/feed/", Source: "Medical Futurist"},
	{URL: "https://venturebeat.com/category/ai/feed/", Source: "VentureBeat"},
	{URL: "https://blogs.bmj.com/bmj/category/artificial-intelligence/feed/", Source: "BMJ"},
	{URL: "https://www.healthcareitnews.com/taxonomy/term/8601/feed", Source: "Healthcare IT News"},
	{URL: "https://www.frontiersin.org/journals/digital-health/rss", Source: "Frontiers in Digital Health"},
}

// Feeds 返回 Feed Registry 的副本
func Feeds() []Feed {
	out := make([]Feed, len(feeds))
	copy(out, feeds)
	return out
}

// Sources 所有可能出现的来源名称（含 arXiv），供筛选项使用
func Sources() []string {
	out := make([]string, 0, len(feeds)+1)
	for _, f := range feeds {
		out = append(out, f.Source)
	}
	return append(out, ArxivSource)
}
