// Package bootstrap はリクエスト処理開始前にスキーマが存在し最新であることを保証します。
package bootstrap

import (
	"context"
	"log/slog"

	"user_backend/internal/shared/apperror"
)

// Schema はbootstrapが必要とするスキーマ操作です。
type Schema interface {
	// CanConnect は対象データベースに接続できるかを返します。
	CanConnect(ctx context.Context) bool
	// EnsureCreated はデータベースとスキーマを現在のモデル定義から作成します。
	EnsureCreated(ctx context.Context) error
	// Migrate は未適用のマイグレーションをID昇順で適用します。
	Migrate(ctx context.Context) error
}

// Run は接続可否に応じてスキーマを作成またはマイグレーションします。
//   - 接続できない場合: EnsureCreated を1回だけ呼び、Migrate は呼ばない
//   - 接続できる場合:   Migrate を1回だけ呼び、EnsureCreated は呼ばない
//
// どちらの失敗もログに出力したうえでマイグレーションエラーとして返します。
// 呼び出し側は起動を中止しなければなりません。
func Run(ctx context.Context, schema Schema, logger *slog.Logger) error {
	logger.Info("applying database migrations")

	if !schema.CanConnect(ctx) {
		logger.Info("database does not exist, creating")
		if err := schema.EnsureCreated(ctx); err != nil {
			logger.Error("failed to set up database", "step", "create", "error", err)
			return wrap("create schema", err)
		}
		logger.Info("database created successfully")
		return nil
	}

	if err := schema.Migrate(ctx); err != nil {
		logger.Error("failed to set up database", "step", "migrate", "error", err)
		return wrap("migrate schema", err)
	}
	logger.Info("database migrations applied successfully")
	return nil
}

// wrap は既に分類済みのエラーはそのまま残し、未分類ならマイグレーションエラーとして包みます。
func wrap(op string, err error) error {
	if apperror.KindOf(err) == apperror.KindUnknown {
		return apperror.Migration(op, err)
	}
	return err
}
