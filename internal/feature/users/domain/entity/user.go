// Package entity defines the domain entities for the users feature.
package entity

import "time"

// User is the single persisted record type exposed by the API.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Name is the display name.
	Name string `gorm:"size:100;not null"`

	// Email is unique across all users and stored lower-cased.
	Email string `gorm:"size:255;not null;uniqueIndex:idx_users_email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// It is never serialized to clients.
	PasswordHash string `gorm:"size:255;not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// TableName pins the table name used by the migrations.
func (User) TableName() string { return "users" }
