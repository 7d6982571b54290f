package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LJTian/MedAIRadar/internal/processor"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrArchiveDisabled = errors.New("archive is not configured")

// Run 一次归档的采集结果
type Run struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Days      int       `json:"days"`
	Records   int       `json:"records"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

type Article struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	RunID         string            `gorm:"size:36;index" json:"runId"`
	Title         string            `gorm:"size:512" json:"title"`
	Link          string            `gorm:"size:1024" json:"link"`
	Date          time.Time         `gorm:"index" json:"date"`
	PublishedDate string            `gorm:"size:10;index" json:"publishedDate"` // YYYY-MM-DD
	Description   string            `gorm:"size:600" json:"description"`
	Source        string            `gorm:"size:64;index" json:"source"`
	Topics        datatypes.JSONMap `json:"topics"`

	CreatedAt time.Time `json:"createdAt"`
}

func newArticle(runID string, r processor.Record) Article {
	topics := make(datatypes.JSONMap, len(r.Topics))
	for k, v := range r.Topics {
		topics[k] = v
	}
	return Article{
		RunID:         runID,
		Title:         truncateRunesDB(toValidUTF8(r.Title), 512),
		Link:          truncateRunesDB(r.Link, 1024),
		Date:          r.Date,
		PublishedDate: r.Date.Format("2006-01-02"),
		Description:   truncateRunesDB(toValidUTF8(r.Description), 600),
		Source:        truncateRunesDB(r.Source, 64),
		Topics:        topics,
	}
}

// Record 转回流水线记录，便于导出
func (a Article) Record() processor.Record {
	topics := make(map[string]bool, len(a.Topics))
	for k, v := range a.Topics {
		b, _ := v.(bool)
		topics[k] = b
	}
	return processor.Record{
		Title:       a.Title,
		Link:        a.Link,
		Date:        a.Date,
		Description: a.Description,
		Source:      a.Source,
		Topics:      topics,
	}
}

// SaveRun 在一个事务里写入本轮结果
func (s *Store) SaveRun(ctx context.Context, days int, records []processor.Record) (*Run, error) {
	if !s.ArchiveEnabled() {
		return nil, ErrArchiveDisabled
	}

	run := &Run{
		ID:      uuid.NewString(),
		Days:    days,
		Records: len(records),
	}
	articles := make([]Article, 0, len(records))
	for _, r := range records {
		articles = append(articles, newArticle(run.ID, r))
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(articles) == 0 {
			return nil
		}
		return tx.CreateInBatches(articles, 100).Error
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ArchiveRun 未配置归档时直接跳过
func (s *Store) ArchiveRun(ctx context.Context, days int, records []processor.Record) error {
	if !s.ArchiveEnabled() {
		return nil
	}
	run, err := s.SaveRun(ctx, days, records)
	if err != nil {
		return err
	}
	slog.Info("run archived", "run_id", run.ID, "records", run.Records)
	return nil
}

// ListRuns 按时间倒序返回最近的归档
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if !s.ArchiveEnabled() {
		return nil, ErrArchiveDisabled
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var runs []Run
	err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// ListRunArticles 返回某次归档的全部记录，保持日期倒序
func (s *Store) ListRunArticles(ctx context.Context, runID string) ([]Article, error) {
	if !s.ArchiveEnabled() {
		return nil, ErrArchiveDisabled
	}
	var list []Article
	err := s.DB.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("date DESC").Order("id ASC").
		Find(&list).Error
	return list, err
}
