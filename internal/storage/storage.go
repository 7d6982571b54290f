package storage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store 聚合归档库与结果缓存，两者均可为空（未配置时对应功能关闭）
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	s := &Store{}

	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			// 批量归档时 SQL 日志过多，只保留告警
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, err
		}
		if err := migrate(db); err != nil {
			return nil, err
		}
		s.DB = db
	}

	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis ping failed", "addr", redisAddr, "error", err)
		}
		s.Redis = rdb
	}

	return s, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Run{}, &Article{})
}

func (s *Store) ArchiveEnabled() bool {
	return s != nil && s.DB != nil
}

func (s *Store) CacheEnabled() bool {
	return s != nil && s.Redis != nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
