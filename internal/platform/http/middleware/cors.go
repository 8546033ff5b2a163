// Package middleware はHTTPサーバー共通のginミドルウェアを提供します。
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS は全オリジン・全メソッド・全ヘッダーを許可するCORSミドルウェアを返します。
// 認証情報付きリクエストは許可しません。
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{RequestIDHeader, "Location"},
		MaxAge:          12 * time.Hour,
	})
}
