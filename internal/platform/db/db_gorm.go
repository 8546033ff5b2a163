// Package db はgormによるPostgreSQL接続と、pgxによる管理用操作を提供します。
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user_backend/internal/platform/connstr"
	"user_backend/internal/shared/apperror"
)

// MaintenanceDatabase はデータベース作成時に接続する管理用データベース名です。
const MaintenanceDatabase = "postgres"

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const uniqueViolation = "23505"

// Opener はDSNからgorm接続を開く関数です。テストではSQLiteに差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// OpenPostgres はPostgreSQLへのgorm接続を開きます。
// gorm.Open は接続確認のためのPingを行うため、到達できない場合はここで失敗します。
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, apperror.Connectivity("open database", err)
	}
	return db, nil
}

// Ping はgorm接続の疎通を確認します。
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return apperror.Connectivity("ping database", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.Connectivity("ping database", err)
	}
	return nil
}

// Close はgorm接続の下位にある *sql.DB を閉じます。
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateDatabase は管理用データベースに接続し、対象データベースが無ければ作成します。
// 接続は関数を抜ける時点で必ず閉じられます。
func CreateDatabase(ctx context.Context, d connstr.Descriptor) error {
	conn, err := pgx.Connect(ctx, d.WithDatabase(MaintenanceDatabase).DSN())
	if err != nil {
		return apperror.Connectivity("connect maintenance database", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	var exists bool
	if err := conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", d.Database,
	).Scan(&exists); err != nil {
		return apperror.Query("check database", err)
	}
	if exists {
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{d.Database}.Sanitize()); err != nil {
		return apperror.Migration("create database", fmt.Errorf("%s: %w", d.Database, err))
	}
	return nil
}

// IsUniqueViolation は err が一意制約違反かどうかを判定します。
// gormのエラー変換結果とpgconnのSQLSTATEの両方を確認します。
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
