// Package migration はスキーマ変更を明示的な順序付きリストとして管理します。
//
// 適用済みのマイグレーションは schema_migrations テーブルに記録され、
// 未適用のものだけがID昇順で1件ずつトランザクション内で適用されます。
package migration

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"user_backend/internal/shared/apperror"
)

// HistoryTable はマイグレーション履歴テーブル名です。
const HistoryTable = "schema_migrations"

// Migration は1つのスキーマ変更です。
// ID は辞書順が適用順になるようタイムスタンプで始めます。
type Migration struct {
	ID      string
	Migrate func(tx *gorm.DB) error
}

// HistoryRecord は適用済みマイグレーション1件を表します。
type HistoryRecord struct {
	MigrationID string    `gorm:"column:migration_id;primaryKey;size:150"`
	AppliedAt   time.Time `gorm:"not null"`
}

// TableName は履歴テーブル名を返します。
func (HistoryRecord) TableName() string { return HistoryTable }

// Migrator は順序付きマイグレーションリストをデータベースに適用します。
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// New は Migrator を生成します。migrations の並び順は問いません。
func New(db *gorm.DB, migrations []Migration) *Migrator {
	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int { return strings.Compare(a.ID, b.ID) })
	return &Migrator{db: db, migrations: sorted}
}

// Up は未適用のマイグレーションをID昇順で適用し、適用したIDを返します。
// 途中で失敗した場合、それまでに適用したものはコミット済みのまま残ります。
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&HistoryRecord{}); err != nil {
		return nil, apperror.Migration("create history table", err)
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(pending))
	for _, mg := range m.migrations {
		if !slices.Contains(pending, mg.ID) {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := mg.Migrate(tx); err != nil {
				return err
			}
			return tx.Create(&HistoryRecord{MigrationID: mg.ID, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, apperror.Migration("apply "+mg.ID, err)
		}
		applied = append(applied, mg.ID)
	}
	return applied, nil
}

// Applied は適用済みマイグレーションのIDを昇順で返します。
// 履歴テーブルが存在しない場合は空スライスを返します。
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&HistoryRecord{}) {
		return []string{}, nil
	}

	ids := []string{}
	if err := db.Model(&HistoryRecord{}).
		Order("migration_id ASC").
		Pluck("migration_id", &ids).Error; err != nil {
		return nil, apperror.Query("load migration history", err)
	}
	return ids, nil
}

// Pending は未適用マイグレーションのIDを昇順で返します。
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	pending := []string{}
	for _, mg := range m.migrations {
		if !slices.Contains(applied, mg.ID) {
			pending = append(pending, mg.ID)
		}
	}
	return pending, nil
}

func (m *Migrator) validate() error {
	for i, mg := range m.migrations {
		if mg.ID == "" || mg.Migrate == nil {
			return apperror.Migration("validate", fmt.Errorf("migration at position %d is incomplete", i))
		}
		if i > 0 && m.migrations[i-1].ID == mg.ID {
			return apperror.Migration("validate", fmt.Errorf("duplicate migration id %q", mg.ID))
		}
	}
	return nil
}
