// Package schema はbootstrapが使うスキーマ操作をPostgreSQL上に実装します。
package schema

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"user_backend/internal/platform/connstr"
	"user_backend/internal/platform/db"
	"user_backend/internal/platform/migration"
)

// DatabaseCreator は対象データベースが存在しない場合に作成する関数です。
type DatabaseCreator func(ctx context.Context, d connstr.Descriptor) error

// Manager は接続確認、データベース作成、マイグレーション適用を行います。
// 一度確立したgorm接続は保持され、DB() で取得できます。
type Manager struct {
	desc           connstr.Descriptor
	open           db.Opener
	createDatabase DatabaseCreator
	migrations     []migration.Migration
	logger         *slog.Logger

	conn    *gorm.DB
	applied []string
}

// Option は Manager の設定を変更します。
type Option func(*Manager)

// WithOpener はgorm接続の開き方を差し替えます。
func WithOpener(open db.Opener) Option {
	return func(m *Manager) { m.open = open }
}

// WithDatabaseCreator はデータベース作成処理を差し替えます。
func WithDatabaseCreator(create DatabaseCreator) Option {
	return func(m *Manager) { m.createDatabase = create }
}

// WithMigrations は適用するマイグレーションリストを差し替えます。
func WithMigrations(migrations []migration.Migration) Option {
	return func(m *Manager) { m.migrations = migrations }
}

// NewManager は Manager を生成します。
// デフォルトではPostgreSQLに接続し、migration.All() を適用します。
func NewManager(desc connstr.Descriptor, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		desc:           desc,
		open:           db.OpenPostgres,
		createDatabase: db.CreateDatabase,
		migrations:     migration.All(),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CanConnect は対象データベースに接続できるかを返します。
func (m *Manager) CanConnect(ctx context.Context) bool {
	_, err := m.connect(ctx)
	if err != nil {
		m.logger.Info("database is not reachable", "target", m.desc.Redacted(), "error", err)
		return false
	}
	return true
}

// EnsureCreated はデータベースを作成し、全マイグレーションを適用して現在のスキーマを構築します。
func (m *Manager) EnsureCreated(ctx context.Context) error {
	if err := m.createDatabase(ctx, m.desc); err != nil {
		return err
	}
	m.logger.Info("database created", "database", m.desc.Database)
	return m.Migrate(ctx)
}

// Migrate は未適用のマイグレーションをID昇順で適用します。
func (m *Manager) Migrate(ctx context.Context) error {
	conn, err := m.connect(ctx)
	if err != nil {
		return err
	}
	applied, err := migration.New(conn, m.migrations).Up(ctx)
	for _, id := range applied {
		m.logger.Info("migration applied", "migration_id", id)
	}
	m.applied = append(m.applied, applied...)
	return err
}

// Applied はこの Manager が適用したマイグレーションIDを適用順に返します。
func (m *Manager) Applied() []string { return m.applied }

// DB はbootstrap後のgorm接続を返します。接続前は nil です。
func (m *Manager) DB() *gorm.DB { return m.conn }

// Close は保持している接続を閉じます。
func (m *Manager) Close() error {
	err := db.Close(m.conn)
	m.conn = nil
	return err
}

func (m *Manager) connect(ctx context.Context) (*gorm.DB, error) {
	if m.conn != nil {
		if err := db.Ping(ctx, m.conn); err != nil {
			return nil, err
		}
		return m.conn, nil
	}

	conn, err := m.open(m.desc.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx, conn); err != nil {
		_ = db.Close(conn)
		return nil, err
	}
	m.conn = conn
	return conn, nil
}
