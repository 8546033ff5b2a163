// Package adapters はdbtestフィーチャーのpgxによるセッション実装を提供します。
package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"

	"user_backend/internal/feature/dbtest/usecase"
	"user_backend/internal/platform/connstr"
	"user_backend/internal/shared/apperror"
)

// pgxSession はSessionインターフェースのpgx実装です。1本の接続だけを保持します。
type pgxSession struct {
	conn *pgx.Conn
}

// pgxSessionがSessionを実装していることをコンパイル時に検証します。
var _ usecase.Session = (*pgxSession)(nil)

// Dial は d に接続して Session を返します。接続失敗は接続エラーとして分類されます。
func Dial(ctx context.Context, d connstr.Descriptor) (usecase.Session, error) {
	conn, err := pgx.Connect(ctx, d.DSN())
	if err != nil {
		return nil, apperror.Connectivity("connect", err)
	}
	return &pgxSession{conn: conn}, nil
}

// Version は SELECT version() の結果を返します。
func (s *pgxSession) Version(ctx context.Context) (string, error) {
	var v string
	if err := s.conn.QueryRow(ctx, "SELECT version()").Scan(&v); err != nil {
		return "", apperror.Query("server version", err)
	}
	return v, nil
}

// TableExists は現在のスキーマにテーブルが存在するかを返します。
func (s *pgxSession) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table,
	).Scan(&exists)
	if err != nil {
		return false, apperror.Query("table exists "+table, err)
	}
	return exists, nil
}

// CountRows はテーブルの行数を返します。
func (s *pgxSession) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n); err != nil {
		return 0, apperror.Query("count "+table, err)
	}
	return n, nil
}

// MigrationIDs は履歴テーブルのマイグレーションIDを昇順で返します。
func (s *pgxSession) MigrationIDs(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		"SELECT migration_id FROM "+pgx.Identifier{usecase.HistoryTable}.Sanitize()+" ORDER BY migration_id ASC")
	if err != nil {
		return nil, apperror.Query("migration history", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperror.Query("migration history", err)
	}
	return ids, nil
}

// Close は接続を閉じます。
func (s *pgxSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
