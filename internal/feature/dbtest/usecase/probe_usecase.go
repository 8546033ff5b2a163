// Package usecase はデータベース診断プローブのロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_backend/internal/feature/dbtest/domain/entity"
	"user_backend/internal/platform/connstr"
	"user_backend/internal/shared/apperror"
)

const (
	// UsersTable は詳細プローブで存在と件数を確認するテーブルです。
	UsersTable = "users"
	// HistoryTable はマイグレーション履歴テーブルです。
	HistoryTable = "schema_migrations"
)

// Session は1つの診断対象への接続を表します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type Session interface {
	// Version はサーバーのバージョン文字列を返します。
	Version(ctx context.Context) (string, error)

	// TableExists は public スキーマにテーブルが存在するかを返します。
	TableExists(ctx context.Context, table string) (bool, error)

	// CountRows はテーブルの行数を返します。
	CountRows(ctx context.Context, table string) (int64, error)

	// MigrationIDs は適用済みマイグレーションIDを昇順で返します。
	MigrationIDs(ctx context.Context) ([]string, error)

	// Close は接続を閉じます。
	Close(ctx context.Context) error
}

// Dialer は接続情報からセッションを開きます。
type Dialer interface {
	Dial(ctx context.Context, d connstr.Descriptor) (Session, error)
}

// DialerFunc は関数を Dialer として扱うためのアダプタです。
type DialerFunc func(ctx context.Context, d connstr.Descriptor) (Session, error)

// Dial は f(ctx, d) を呼び出します。
func (f DialerFunc) Dial(ctx context.Context, d connstr.Descriptor) (Session, error) { return f(ctx, d) }

// ProbeUsecase は診断対象を順に調べます。
type ProbeUsecase struct {
	dialer  Dialer
	timeout time.Duration
}

// NewProbeUsecase は ProbeUsecase の新しいインスタンスを生成します。
// timeout は対象ごとの制限時間です。0以下なら呼び出し元の ctx に従います。
func NewProbeUsecase(dialer Dialer, timeout time.Duration) *ProbeUsecase {
	return &ProbeUsecase{dialer: dialer, timeout: timeout}
}

// Run はすべての対象を順番に調べます。
// 1つの対象の失敗は他の対象の実行を妨げません。
func (u *ProbeUsecase) Run(ctx context.Context, targets []entity.Target) []entity.Report {
	reports := make([]entity.Report, 0, len(targets))
	for _, t := range targets {
		reports = append(reports, u.Probe(ctx, t))
	}
	return reports
}

// Probe は1つの対象に接続し、結果を Report にまとめます。エラーは返さず Report に記録します。
func (u *ProbeUsecase) Probe(ctx context.Context, t entity.Target) (report entity.Report) {
	report = entity.Report{Target: t.Name, Detailed: t.Detailed}
	if t.ConnString == "" {
		report.Skipped = true
		return report
	}

	desc, err := connstr.Resolve(t.ConnString)
	if err != nil {
		report.Failure = Classify(err)
		return report
	}
	report.Endpoint = desc.Redacted()

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	session, err := u.dialer.Dial(ctx, desc)
	if err != nil {
		report.Failure = Classify(err)
		return report
	}
	defer func() { _ = session.Close(ctx) }()

	if err := u.inspect(ctx, session, &report); err != nil {
		report.Failure = Classify(err)
	}
	return report
}

func (u *ProbeUsecase) inspect(ctx context.Context, s Session, r *entity.Report) error {
	version, err := s.Version(ctx)
	if err != nil {
		return err
	}
	r.Version = version
	if !r.Detailed {
		return nil
	}

	if r.UsersTableExists, err = s.TableExists(ctx, UsersTable); err != nil {
		return err
	}
	if r.UsersTableExists {
		if r.UserCount, err = s.CountRows(ctx, UsersTable); err != nil {
			return err
		}
	}
	r.UsersChecked = true

	if r.HistoryExists, err = s.TableExists(ctx, HistoryTable); err != nil {
		return err
	}
	if r.HistoryExists {
		if r.MigrationIDs, err = s.MigrationIDs(ctx); err != nil {
			return err
		}
	}
	r.HistoryChecked = true
	return nil
}

// Classify はエラーをメッセージ・分類・根本原因の型に分解します。
func Classify(err error) *entity.Failure {
	if err == nil {
		return nil
	}
	kind := apperror.KindOf(err)
	if kind == apperror.KindUnknown && errors.Is(err, context.DeadlineExceeded) {
		kind = apperror.KindConnectivity
	}
	return &entity.Failure{
		Message: err.Error(),
		Kind:    string(kind),
		Type:    fmt.Sprintf("%T", apperror.RootCause(err)),
	}
}
