package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	redisv9 "github.com/redis/go-redis/v9"

	"user_backend/internal/app/di"
	"user_backend/internal/app/router"
	usershandler "user_backend/internal/feature/users/transport/handler"
	usersusecase "user_backend/internal/feature/users/usecase"
	"user_backend/internal/platform/bootstrap"
	"user_backend/internal/platform/config"
	"user_backend/internal/platform/connstr"
	"user_backend/internal/platform/db"
	infrahttp "user_backend/internal/platform/http"
	"user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/http/middleware"
	"user_backend/internal/platform/logging"
	infraredis "user_backend/internal/platform/redis"
	"user_backend/internal/platform/schema"
	"user_backend/internal/shared/apperror"
)

func main() {
	if err := run(); err != nil {
		// 詳細は run 内で記録済み
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ロガー（設定読み込み失敗も構造化ログで出すため先に作る）
	envCfg := config.LoadConfigFromEnv()
	logger, closeLog := logging.New(logging.Options{Level: envCfg.LogLevel, File: envCfg.LogFile})
	defer func() { _ = closeLog.Close() }()
	slog.SetDefault(logger)

	// 設定
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err, "kind", apperror.KindOf(err))
		return err
	}
	desc, err := connstr.Resolve(cfg.DefaultConnection)
	if err != nil {
		logger.Error("invalid connection string", "error", err, "kind", apperror.KindOf(err))
		return err
	}
	logger.Info("using database", "connection", desc.Redacted())

	// db（作成 or マイグレーション）
	mgr := schema.NewManager(desc, logger)
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	if err := bootstrap.Run(ctx, mgr, logger); err != nil {
		return err
	}
	gormDB := mgr.DB()

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		logger.Warn("Redis unavailable. Running without cache.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository / Usecase / Handler
	userRepo := di.NewUserRepository(rdb, gormDB, cfg.UserCacheTTL)
	if applied := mgr.Applied(); len(applied) > 0 {
		if err := di.FlushUserCache(ctx, userRepo); err != nil {
			logger.Warn("failed to flush user cache after migrations", "error", err)
		} else if rdb != nil {
			logger.Info("user cache flushed after migrations", "migrations", len(applied))
		}
	}
	userUC := usersusecase.NewUserUsecase(userRepo)
	userH := usershandler.NewUserHandler(userUC)

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Logger:   logger,
		Registry: middleware.NewRegistry(),
		DB:       handler.PingerFunc(func(ctx context.Context) error { return db.Ping(ctx, gormDB) }),
		Users:    userH,
	})

	if err := infrahttp.Serve(ctx, infrahttp.NewServer(cfg.HTTPAddr, r)); err != nil {
		logger.Error("HTTP server failed", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
