package migration

import (
	"time"

	"gorm.io/gorm"
)

// All はアプリケーションのマイグレーションを適用順に返します。
// 新しいマイグレーションは末尾に追加し、既存のものは変更しないこと。
func All() []Migration {
	return []Migration{
		{ID: "20251025120000_create_users", Migrate: createUsers},
		{ID: "20251101090000_add_users_email_unique_index", Migrate: addUsersEmailUniqueIndex},
	}
}

// 各マイグレーションはその時点のテーブル定義のスナップショットを使う。

type usersV1 struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (usersV1) TableName() string { return "users" }

func createUsers(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&usersV1{})
}

type usersV2 struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (usersV2) TableName() string { return "users" }

func addUsersEmailUniqueIndex(tx *gorm.DB) error {
	return tx.Migrator().CreateIndex(&usersV2{}, "idx_users_email")
}
