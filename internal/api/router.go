package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/MedAIRadar/internal/config"
	"github.com/LJTian/MedAIRadar/internal/export"
	"github.com/LJTian/MedAIRadar/internal/processor"
	"github.com/LJTian/MedAIRadar/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"
)

const maxDays = 365

// NewsSource 流水线入口
type NewsSource interface {
	News(ctx context.Context, days int) []processor.Record
}

type Server struct {
	store *storage.Store
	news  NewsSource
	cfg   *config.Config
	group singleflight.Group
}

func NewServer(store *storage.Store, news NewsSource, cfg *config.Config) *Server {
	return &Server{store: store, news: news, cfg: cfg}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/news", s.listNews)
		v1.GET("/topics", s.listTopics)
		v1.GET("/sources", s.listSources)
		v1.POST("/refresh", s.refresh)
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id/articles", s.listRunArticles)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) defaultDays() int {
	if s.cfg != nil && s.cfg.NewsDays > 0 {
		return s.cfg.NewsDays
	}
	return config.DefaultDays
}

func (s *Server) parseDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		return s.defaultDays()
	}
	if days > maxDays {
		return maxDays
	}
	return days
}

// loadNews 先读缓存，未命中时跑一轮流水线；同一 days 的并发请求只采集一次
func (s *Server) loadNews(ctx context.Context, days int) []processor.Record {
	if records, ok := s.store.GetCachedNews(ctx, days); ok {
		return records
	}

	v, _, _ := s.group.Do(strconv.Itoa(days), func() (interface{}, error) {
		// 采集不随单个请求取消
		runCtx := context.WithoutCancel(ctx)
		records := s.news.News(runCtx, days)
		if err := s.store.CacheNews(runCtx, days, records, s.cacheTTL()); err != nil {
			slog.Warn("cache news failed", "days", days, "error", err)
		}
		return records, nil
	})
	return v.([]processor.Record)
}

func (s *Server) cacheTTL() time.Duration {
	if s.cfg != nil && s.cfg.CacheTTL > 0 {
		return s.cfg.CacheTTL
	}
	return time.Hour
}

func (s *Server) listNews(c *gin.Context) {
	q, err := parseQuery(c.Query("from"), c.Query("to"), c.QueryArray("source"), c.QueryArray("topic"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": err.Error(),
		})
		return
	}

	days := s.parseDays(c)
	records := Filter(s.loadNews(c.Request.Context(), days), q)

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="medai_news.csv"`)
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, records); err != nil {
			slog.Error("write csv failed", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    records,
	})
}

func (s *Server) listTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    processor.TopicNames(),
	})
}

func (s *Server) listSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    config.Sources(),
	})
}

// refresh 清空结果缓存，下次读取时重新采集
func (s *Server) refresh(c *gin.Context) {
	n, err := s.store.ClearNewsCache(c.Request.Context())
	if err != nil {
		slog.Error("clear news cache failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    gin.H{"cleared": n},
	})
}

func (s *Server) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.archiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    runs,
	})
}

func (s *Server) listRunArticles(c *gin.Context) {
	id := c.Param("id")
	articles, err := s.store.ListRunArticles(c.Request.Context(), id)
	if err != nil {
		s.archiveError(c, err)
		return
	}
	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "run not found",
		})
		return
	}

	records := make([]processor.Record, 0, len(articles))
	for _, a := range articles {
		records = append(records, a.Record())
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="medai_run_`+id+`.csv"`)
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, records); err != nil {
			slog.Error("write csv failed", "run_id", id, "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    records,
	})
}

func (s *Server) archiveError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrArchiveDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "archive_disabled",
			"message": err.Error(),
		})
		return
	}
	slog.Error("archive query failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
