package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	webAdapter "orderhub/internal/adapters/web"
	"orderhub/internal/audit"
	"orderhub/internal/config"
	"orderhub/internal/core"
	"orderhub/internal/db"
	"orderhub/internal/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.DatabaseURL == "" {
		zlog.Fatal("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		zlog.Fatal("JWT_SECRET is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()

	sink := audit.NewNopSink()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis unreachable, audit events disabled", zap.Error(err))
		} else {
			sink = audit.NewRedisSink(client, cfg.Redis.AuditChannel, zlog)
			zlog.Info("audit events enabled", zap.String("channel", cfg.Redis.AuditChannel))
		}
	}

	inventory := core.NewInventoryService(pool)
	services := webAdapter.Services{
		Orders:    core.NewOrderService(pool, inventory, sink),
		Products:  core.NewProductService(pool),
		Customers: core.NewCustomerService(pool),
		Inventory: inventory,
	}

	handler, err := webAdapter.NewHandler(services, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		RateLimit:      cfg.RateLimit,
		Logger:         zlog,
	})
	if err != nil {
		zlog.Fatal("handler setup failed", zap.Error(err))
	}

	zlog.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("env", cfg.Env))
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
