package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	// 为空时不启用归档 / 缓存
	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// 流水线参数
	NewsDays        int
	FeedWorkers     int
	FeedTimeout     time.Duration
	ArxivEndpoint   string
	ArxivMaxResults int
	CacheTTL        time.Duration

	// 可选的全站 Basic Auth
	BasicAuthUser string
	BasicAuthPass string
}

func Load() *Config {
	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "9000"),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CronSpec:        getEnv("CRON_SPEC", "0 * * * *"),
		NewsDays:        getEnvInt("NEWS_DAYS", DefaultDays),
		FeedWorkers:     getEnvInt("FEED_WORKERS", DefaultFeedWorkers),
		FeedTimeout:     getEnvDuration("FEED_TIMEOUT", DefaultFeedTimeout),
		ArxivEndpoint:   getEnv("ARXIV_ENDPOINT", ArxivEndpoint),
		ArxivMaxResults: getEnvInt("ARXIV_MAX_RESULTS", DefaultArxivMaxResults),
		CacheTTL:        getEnvDuration("CACHE_TTL", time.Hour),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
	}

	slog.Info("config loaded",
		"port", cfg.AppPort,
		"cron", cfg.CronSpec,
		"days", cfg.NewsDays,
		"feed_workers", cfg.FeedWorkers,
		"feed_timeout", cfg.FeedTimeout,
		"archive", cfg.PostgresDSN != "",
		"cache", cfg.RedisAddr != "")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt 解析失败或非正数时回退默认值
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}
