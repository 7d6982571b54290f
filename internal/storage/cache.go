package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LJTian/MedAIRadar/internal/processor"
)

const (
	newsCachePrefix = "medai:news:"
	// 记录写过的缓存 key，清理时不需要按通配符扫描
	newsCacheKeySet = "medai:news:keys"
)

func newsCacheKey(days int) string {
	return fmt.Sprintf("%sdays:%d", newsCachePrefix, days)
}

// GetCachedNews 读取某个时间窗的流水线结果缓存
func (s *Store) GetCachedNews(ctx context.Context, days int) ([]processor.Record, bool) {
	if !s.CacheEnabled() {
		return nil, false
	}
	bs, err := s.Redis.Get(ctx, newsCacheKey(days)).Bytes()
	if err != nil {
		return nil, false
	}
	var cached []processor.Record
	if err := json.Unmarshal(bs, &cached); err != nil {
		return nil, false
	}
	return cached, true
}

// CacheNews 写入结果缓存；空结果不缓存，下次请求会重新采集
func (s *Store) CacheNews(ctx context.Context, days int, records []processor.Record, ttl time.Duration) error {
	if !s.CacheEnabled() || len(records) == 0 {
		return nil
	}
	bs, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal news cache: %w", err)
	}

	key := newsCacheKey(days)
	pipe := s.Redis.TxPipeline()
	pipe.Set(ctx, key, bs, ttl)
	pipe.SAdd(ctx, newsCacheKeySet, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write news cache: %w", err)
	}
	return nil
}

// ClearNewsCache 删除全部时间窗的结果缓存，返回删除的 key 数
func (s *Store) ClearNewsCache(ctx context.Context) (int64, error) {
	if !s.CacheEnabled() {
		return 0, nil
	}
	keys, err := s.Redis.SMembers(ctx, newsCacheKeySet).Result()
	if err != nil {
		return 0, fmt.Errorf("list news cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.Redis.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete news cache: %w", err)
	}
	if err := s.Redis.Del(ctx, newsCacheKeySet).Err(); err != nil {
		return n, fmt.Errorf("delete news cache key set: %w", err)
	}
	return n, nil
}
