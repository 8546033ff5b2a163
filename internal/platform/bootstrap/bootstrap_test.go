package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user_backend/internal/shared/apperror"
)

// mockSchema はSchemaインターフェースのモック実装で、各メソッドの呼び出し回数を記録します。
type mockSchema struct {
	connectable    bool
	createErr      error
	migrateErr     error
	canConnectN    int
	ensureCreatedN int
	migrateN       int
}

func (m *mockSchema) CanConnect(ctx context.Context) bool {
	m.canConnectN++
	return m.connectable
}

func (m *mockSchema) EnsureCreated(ctx context.Context) error {
	m.ensureCreatedN++
	return m.createErr
}

func (m *mockSchema) Migrate(ctx context.Context) error {
	m.migrateN++
	return m.migrateErr
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

// TestRun_NotConnectable_CreatesOnce は接続できない場合にEnsureCreatedだけが1回呼ばれることを検証します。
func TestRun_NotConnectable_CreatesOnce(t *testing.T) {
	t.Parallel()

	s := &mockSchema{connectable: false}
	logger, _ := newTestLogger()

	err := Run(context.Background(), s, logger)

	require.NoError(t, err)
	assert.Equal(t, 1, s.canConnectN)
	assert.Equal(t, 1, s.ensureCreatedN)
	assert.Equal(t, 0, s.migrateN)
}

// TestRun_Connectable_MigratesOnce は接続できる場合にMigrateだけが1回呼ばれることを検証します。
func TestRun_Connectable_MigratesOnce(t *testing.T) {
	t.Parallel()

	s := &mockSchema{connectable: true}
	logger, _ := newTestLogger()

	err := Run(context.Background(), s, logger)

	require.NoError(t, err)
	assert.Equal(t, 1, s.canConnectN)
	assert.Equal(t, 0, s.ensureCreatedN)
	assert.Equal(t, 1, s.migrateN)
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	plain := errors.New("disk full")
	classified := apperror.Connectivity("connect maintenance database", errors.New("refused"))

	tests := []struct {
		name       string
		schema     *mockSchema
		wantCause  error
		wantKind   apperror.Kind
		wantLogged string
	}{
		{
			name:       "create failure is a migration error",
			schema:     &mockSchema{connectable: false, createErr: plain},
			wantCause:  plain,
			wantKind:   apperror.KindMigration,
			wantLogged: "step=create",
		},
		{
			name:       "create failure keeps an existing classification",
			schema:     &mockSchema{connectable: false, createErr: classified},
			wantCause:  classified,
			wantKind:   apperror.KindConnectivity,
			wantLogged: "step=create",
		},
		{
			name:       "migrate failure is a migration error",
			schema:     &mockSchema{connectable: true, migrateErr: plain},
			wantCause:  plain,
			wantKind:   apperror.KindMigration,
			wantLogged: "step=migrate",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := newTestLogger()

			err := Run(context.Background(), tt.schema, logger)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantCause)
			assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			assert.Contains(t, buf.String(), "failed to set up database")
			assert.Contains(t, buf.String(), tt.wantLogged)
			assert.Equal(t, 1, tt.schema.ensureCreatedN+tt.schema.migrateN, "exactly one branch runs")
		})
	}
}
