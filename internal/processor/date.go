package processor

import (
	"regexp"
	"strings"
	"time"
)

var (
	// "Mon, 14 Apr 2025 10:00:00 GMT" 一类 RFC 2822 日期，只取日月年
	rfcDatePattern = regexp.MustCompile(`(?:\w+,\s+)?(\d{1,2}\s+\w{3}\s+\d{4})`)
	// "2025-04-14T17:59:59Z" 一类 ISO 8601 日期
	isoDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
)

// NormalizeDate 从原始日期字符串中提取日期（UTC 零点），ok=false 表示无法解析。
// 两种模式按顺序尝试，只使用第一个命中的模式；命中但解析失败同样视为无法解析。
func NormalizeDate(raw string) (time.Time, bool) {
	if m := rfcDatePattern.FindStringSubmatch(raw); m != nil {
		t, err := time.Parse("2 Jan 2006", strings.Join(strings.Fields(m[1]), " "))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if m := isoDatePattern.FindStringSubmatch(raw); m != nil {
		t, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	return time.Time{}, false
}
