package processor

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxDescriptionRunes = 300
	truncationMarker    = "..."
)

var (
	// StrictPolicy 去掉全部标签，Policy 构建后可并发使用
	strictPolicy = bluemonday.StrictPolicy()
	residualTag  = regexp.MustCompile(`<[a-zA-Z/!?][^>]*>`)
)

// StripMarkup 提取 HTML 片段中的纯文本。
// 部分源会对 description 做两次转义，解码一次后仍残留标签，再用 bluemonday 去一遍。
func StripMarkup(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	text := strings.TrimSpace(doc.Text())

	if residualTag.MatchString(text) {
		text = strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(text)))
	}
	return text, nil
}

// Sanitize 去标签并截断到 MaxDescriptionRunes；解析失败时保留原文，不阻塞流水线
func Sanitize(raw string) string {
	text, err := StripMarkup(raw)
	if err != nil {
		slog.Warn("clean html failed, keeping original text", "error", err)
		text = raw
	}
	return truncateRunes(text, MaxDescriptionRunes)
}

// truncateRunes 按 rune 截断，超长时追加 "..."
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + truncationMarker
}
