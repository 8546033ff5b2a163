package schema

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"user_backend/internal/platform/connstr"
	"user_backend/internal/platform/migration"
	"user_backend/internal/shared/apperror"
)

var testDesc = connstr.Descriptor{Host: "localhost", Port: 5432, Database: "appdb", Username: "postgres"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sqliteOpener returns an opener that ignores the DSN and opens an in-memory SQLite database.
func sqliteOpener(t *testing.T, opened *[]string) func(dsn string) (*gorm.DB, error) {
	t.Helper()
	return func(dsn string) (*gorm.DB, error) {
		*opened = append(*opened, dsn)
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
		return db, nil
	}
}

func failingOpener(dsn string) (*gorm.DB, error) {
	return nil, apperror.Connectivity("open database", errors.New("connection refused"))
}

func TestManager_CanConnect(t *testing.T) {
	var opened []string
	m := NewManager(testDesc, discardLogger(), WithOpener(sqliteOpener(t, &opened)))

	assert.Nil(t, m.DB())
	assert.True(t, m.CanConnect(context.Background()))
	assert.NotNil(t, m.DB())

	// A second check reuses the established connection.
	assert.True(t, m.CanConnect(context.Background()))
	assert.Len(t, opened, 1)
	assert.Equal(t, testDesc.DSN(), opened[0])
}

func TestManager_CanConnect_Unreachable(t *testing.T) {
	m := NewManager(testDesc, discardLogger(), WithOpener(failingOpener))

	assert.False(t, m.CanConnect(context.Background()))
	assert.Nil(t, m.DB())
}

func TestManager_EnsureCreated(t *testing.T) {
	var opened []string
	var created []connstr.Descriptor

	m := NewManager(testDesc, discardLogger(),
		WithOpener(sqliteOpener(t, &opened)),
		WithDatabaseCreator(func(ctx context.Context, d connstr.Descriptor) error {
			created = append(created, d)
			return nil
		}),
	)

	err := m.EnsureCreated(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []connstr.Descriptor{testDesc}, created)
	require.NotNil(t, m.DB())
	assert.True(t, m.DB().Migrator().HasTable("users"))

	applied, err := migration.New(m.DB(), migration.All()).Applied(context.Background())
	require.NoError(t, err)
	assert.Len(t, applied, len(migration.All()))
}

func TestManager_EnsureCreated_CreatorFails(t *testing.T) {
	var opened []string
	boom := apperror.Connectivity("connect maintenance database", errors.New("refused"))

	m := NewManager(testDesc, discardLogger(),
		WithOpener(sqliteOpener(t, &opened)),
		WithDatabaseCreator(func(ctx context.Context, d connstr.Descriptor) error { return boom }),
	)

	err := m.EnsureCreated(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, opened, "schema must not be touched when the database cannot be created")
}

func TestManager_Migrate(t *testing.T) {
	var opened []string
	var calls []string

	m := NewManager(testDesc, discardLogger(),
		WithOpener(sqliteOpener(t, &opened)),
		WithMigrations([]migration.Migration{
			{ID: "002_second", Migrate: func(tx *gorm.DB) error { calls = append(calls, "002_second"); return nil }},
			{ID: "001_first", Migrate: func(tx *gorm.DB) error { calls = append(calls, "001_first"); return nil }},
		}),
	)

	assert.Empty(t, m.Applied())

	require.NoError(t, m.Migrate(context.Background()))
	assert.Equal(t, []string{"001_first", "002_second"}, calls)
	assert.Equal(t, []string{"001_first", "002_second"}, m.Applied())

	require.NoError(t, m.Migrate(context.Background()))
	assert.Len(t, calls, 2, "applied migrations run only once")
	assert.Equal(t, []string{"001_first", "002_second"}, m.Applied())
}

func TestManager_Migrate_Unreachable(t *testing.T) {
	m := NewManager(testDesc, discardLogger(), WithOpener(failingOpener))

	err := m.Migrate(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperror.KindConnectivity, apperror.KindOf(err))
}

func TestManager_Close(t *testing.T) {
	var opened []string
	m := NewManager(testDesc, discardLogger(), WithOpener(sqliteOpener(t, &opened)))
	require.True(t, m.CanConnect(context.Background()))

	assert.NoError(t, m.Close())
	assert.Nil(t, m.DB())
	assert.NoError(t, m.Close())
}
