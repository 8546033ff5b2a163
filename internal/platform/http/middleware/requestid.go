package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader はリクエストIDを運ぶHTTPヘッダーです。
const RequestIDHeader = "X-Request-ID"

// requestIDKey は gin.Context にリクエストIDを保存するキーです。
const requestIDKey = "request_id"

// maxRequestIDLength を超えるクライアント指定のIDは破棄して採番し直します。
const maxRequestIDLength = 128

// RequestID はリクエストIDを割り当てるミドルウェアを返します。
// クライアントが X-Request-ID を送った場合はそれを引き継ぎ、なければUUIDを生成します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID は RequestID ミドルウェアが設定したIDを返します。未設定なら空文字です。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
