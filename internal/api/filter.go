package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/MedAIRadar/internal/processor"
)

const allSources = "All"

// Query 看板筛选条件，零值表示不过滤
type Query struct {
	From    time.Time
	To      time.Time
	Sources []string
	Topics  []string
}

// parseQuery 解析 from/to/source/topic，source 与 topic 可重复或逗号分隔
func parseQuery(from, to string, sources, topics []string) (Query, error) {
	var q Query
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return q, fmt.Errorf("invalid from %q: %w", from, err)
		}
		q.From = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return q, fmt.Errorf("invalid to %q: %w", to, err)
		}
		// 截止日包含当天
		q.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return q, fmt.Errorf("from %s is after to %s", from, to)
	}

	for _, s := range splitValues(sources) {
		if s == allSources {
			q.Sources = nil
			break
		}
		q.Sources = append(q.Sources, s)
	}
	q.Topics = splitValues(topics)
	return q, nil
}

func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Filter 保持输入顺序
func Filter(records []processor.Record, q Query) []processor.Record {
	out := make([]processor.Record, 0, len(records))
	for _, r := range records {
		if !q.From.IsZero() && r.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && r.Date.After(q.To) {
			continue
		}
		if len(q.Sources) > 0 && !contains(q.Sources, r.Source) {
			continue
		}
		if len(q.Topics) > 0 && !r.HasAnyTopic(q.Topics) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
