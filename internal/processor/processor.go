package processor

import (
	"time"

	"github.com/LJTian/MedAIRadar/internal/collector"
)

// Record 是流水线输出给展示层的统一结构
type Record struct {
	Title       string          `json:"title"`
	Link        string          `json:"link"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Source      string          `json:"source"`
	Topics      map[string]bool `json:"topics"`
}

// SimpleProcessor 做日期归一、HTML 清洗与主题标注
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

// Process 按输入顺序输出；日期无法解析的条目直接丢弃，不做默认值填充
func (p *SimpleProcessor) Process(items []collector.NewsItem) []Record {
	out := make([]Record, 0, len(items))

	for _, it := range items {
		date, ok := NormalizeDate(it.PublishedRaw)
		if !ok {
			continue
		}

		desc := Sanitize(it.Description)
		out = append(out, Record{
			Title:       it.Title,
			Link:        it.Link,
			Date:        date,
			Description: desc,
			Source:      it.Source,
			Topics:      Classify(it.Title, desc),
		})
	}

	return out
}

// HasAnyTopic 判断记录是否命中任一给定主题
func (r Record) HasAnyTopic(topics []string) bool {
	for _, t := range topics {
		if r.Topics[t] {
			return true
		}
	}
	return false
}
