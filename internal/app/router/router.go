package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	usershandler "user_backend/internal/feature/users/transport/handler"
	"user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/http/middleware"
)

// Deps はルーター構築に必要な依存関係です。
type Deps struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	DB       handler.Pinger
	Users    *usershandler.UserHandler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	// 共通ミドルウェア（順序に意味あり: IDを採番してからログ・復旧）
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(),
		middleware.NewHTTPMetrics(d.Registry).Middleware(),
	)

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	// DB疎通込みの準備完了確認
	r.GET("/readyz", handler.Ready(d.DB))
	// Prometheus
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler(d.Registry)))

	// ユーザーAPI
	d.Users.Register(r.Group("/api/users"))

	return r
}
