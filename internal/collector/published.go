package collector

import (
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// publishedOnly 只保留 pubDate / published 元素。
// gofeed 默认会回落到 dc:date 或 updated，这类条目应按无日期处理
type publishedOnly struct {
	base gofeed.Translator
}

func (t publishedOnly) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.base.Translate(feed)
	if err != nil {
		return nil, err
	}

	switch raw := feed.(type) {
	case *rss.Feed:
		for i, it := range raw.Items {
			if i < len(out.Items) && out.Items[i] != nil {
				out.Items[i].Published = it.PubDate
				out.Items[i].PublishedParsed = it.PubDateParsed
			}
		}
	case *atom.Feed:
		for i, e := range raw.Entries {
			if i < len(out.Items) && out.Items[i] != nil {
				out.Items[i].Published = e.Published
				out.Items[i].PublishedParsed = e.PublishedParsed
			}
		}
	}
	return out, nil
}

func newFeedParser() *gofeed.Parser {
	fp := gofeed.NewParser()
	fp.RSSTranslator = publishedOnly{base: &gofeed.DefaultRSSTranslator{}}
	fp.AtomTranslator = publishedOnly{base: &gofeed.DefaultAtomTranslator{}}
	return fp
}
