package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LJTian/MedAIRadar/internal/api"
	"github.com/LJTian/MedAIRadar/internal/config"
	"github.com/LJTian/MedAIRadar/internal/pipeline"
	"github.com/LJTian/MedAIRadar/internal/scheduler"
	"github.com/LJTian/MedAIRadar/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		slog.Error("init store failed", "error", err)
		os.Exit(1)
	}

	agg := pipeline.NewFromConfig(cfg)

	// 定时采集并预热缓存
	s, err := scheduler.New(cfg.CronSpec, agg, store, cfg.NewsDays, cfg.CacheTTL)
	if err != nil {
		slog.Error("init scheduler failed", "error", err)
		os.Exit(1)
	}
	s.Start()
	defer s.Stop()

	// API
	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(store, agg, cfg)
	apiServer.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting api server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server exit", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// basicAuthMiddleware 为整个站点增加一个简单的 Basic Auth 访问密码。
// 仅当配置了 APP_BASIC_USER / APP_BASIC_PASS 时启用。
// /health 与 /metrics 不做认证，便于健康检查和抓取。
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/health", "/metrics":
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
