// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"user_backend/internal/feature/users/adapters"
	"user_backend/internal/feature/users/usecase"
	"user_backend/internal/platform/cache"
)

// NewUserRepository creates a UserRepository implementation.
// If Redis is available, the PostgreSQL repository is wrapped with a read-through cache.
// Otherwise, it talks to PostgreSQL directly.
func NewUserRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.UserRepository {
	repo := adapters.NewUserPostgres(db)
	if rdb != nil {
		return cache.NewCachingUserRepository(rdb, ttl, repo, "users")
	}
	return repo
}

// FlushUserCache discards every cached user when repo is backed by Redis.
// Call it after migrations change the schema.
func FlushUserCache(ctx context.Context, repo usecase.UserRepository) error {
	c, ok := repo.(*cache.CachingUserRepository)
	if !ok {
		return nil
	}
	return c.Flush(ctx)
}
