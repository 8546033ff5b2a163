package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// shutdownTimeout は停止シグナル受信後に処理中のリクエストを待つ最大時間です。
const shutdownTimeout = 10 * time.Second

// NewServer はAPI配信用に設定された http.Server を作成します。
//
// 設定:
//   - ReadHeaderTimeout: ヘッダー受信の最大時間（Slowloris対策）
//   - ReadTimeout / WriteTimeout: リクエスト全体の読み書きの最大時間
//   - IdleTimeout: keep-alive 接続の維持期間
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}

// Serve は ctx がキャンセルされるまでサーバーを動かし、その後グレースフルに停止します。
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
