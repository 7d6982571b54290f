package collector

import (
	"context"
	"strings"
)

// 源数据缺字段时的占位值
const (
	NoTitle = "No Title"
	NoLink  = "No Link"
	NoDate  = "No Date"
)

// NewsItem 统一采集后的基础结构；日期保持原始字符串，由 processor 统一解析
type NewsItem struct {
	Title        string
	Link         string
	PublishedRaw string
	Description  string
	Source       string
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]NewsItem, error)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// firstNonEmpty 按顺序返回第一个非空字段
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
