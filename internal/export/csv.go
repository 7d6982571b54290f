package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/LJTian/MedAIRadar/internal/processor"
)

var baseColumns = []string{"date", "title", "source", "link", "description"}

// Header 固定列加每个主题一列
func Header() []string {
	return append(append([]string(nil), baseColumns...), processor.TopicNames()...)
}

// WriteCSV 按记录顺序写出表格
func WriteCSV(w io.Writer, records []processor.Record) error {
	cw := csv.NewWriter(w)
	topics := processor.TopicNames()

	if err := cw.Write(Header()); err != nil {
		return err
	}
	row := make([]string, 0, len(baseColumns)+len(topics))
	for _, r := range records {
		row = row[:0]
		row = append(row, r.Date.Format("2006-01-02"), r.Title, r.Source, r.Link, r.Description)
		for _, t := range topics {
			row = append(row, strconv.FormatBool(r.Topics[t]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
