package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/purpleforest/purpleforest/config"
	"github.com/purpleforest/purpleforest/internal/api"
	"github.com/purpleforest/purpleforest/internal/api/handler"
	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/internal/service"
	"github.com/purpleforest/purpleforest/pkg/database"
	"github.com/purpleforest/purpleforest/pkg/logger"
	"github.com/purpleforest/purpleforest/pkg/token"
	"github.com/purpleforest/purpleforest/pkg/tracing"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.OTLPEndpoint, cfg.Tracing.ServiceName)
	if err != nil {
		logger.L().Fatal("init tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.L().Fatal("init database", zap.Error(err))
	}

	var cache *service.FollowerCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, follower cache disabled", zap.Error(err))
		} else {
			cache = service.NewFollowerCache(client, cfg.Redis.CacheTTL)
		}
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	bloomRepo := repository.NewBloomRepository(db)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	credentials := service.NewCredentialService(userRepo)
	relations := service.NewRelationshipService(followRepo, cache)
	blooms := service.NewBloomService(bloomRepo)
	timelines := service.NewTimelineService(bloomRepo, followRepo, cache)

	h := handler.New(credentials, relations, blooms, timelines, userRepo, tokens)
	router := api.NewRouter(h, tokens, userRepo, cfg.Tracing.ServiceName)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
