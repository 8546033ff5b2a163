// Package cli はdbtestの結果を人が読む形式で出力します。
package cli

import (
	"fmt"
	"io"
	"strings"

	"user_backend/internal/feature/dbtest/domain/entity"
)

// localHint は詳細確認を行わない対象（ローカル）が失敗したときに添える案内です。
const localHint = "hint: this is expected if PostgreSQL is not installed locally"

// Print はレポートを順に w へ書き出します。
func Print(w io.Writer, reports []entity.Report) error {
	p := &printer{w: w}
	for i, r := range reports {
		if i > 0 {
			p.line("")
		}
		p.report(r)
	}
	return p.err
}

// printer は最初の書き込みエラーを保持し、以降の書き込みを省略します。
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) report(r entity.Report) {
	p.line("=== %s database ===", r.Target)
	if r.Skipped {
		p.line("skipped: no connection string configured")
		return
	}
	if r.Endpoint != "" {
		p.line("connection: %s", r.Endpoint)
	}
	if r.Failure != nil {
		p.line("status: FAILED")
		p.line("error: %s", r.Failure.Message)
		p.line("error kind: %s (%s)", r.Failure.Kind, r.Failure.Type)
		if !r.Detailed {
			p.line(localHint)
		}
		if r.Version == "" {
			return
		}
	} else {
		p.line("status: OK")
	}
	if r.Version != "" {
		p.line("server version: %s", r.Version)
	}

	// 失敗前に完了した手順の結果は出力する
	if r.UsersChecked {
		if r.UsersTableExists {
			p.line("users table: exists (%d rows)", r.UserCount)
		} else {
			p.line("users table: missing")
		}
	}
	if !r.HistoryChecked {
		return
	}
	if !r.HistoryExists {
		p.line("migration history: missing")
		return
	}
	p.line("migration history: %d applied", len(r.MigrationIDs))
	for _, id := range r.MigrationIDs {
		p.line("  - %s", id)
	}
}

// Summary は成功・失敗・スキップの件数を1行で返します。
func Summary(reports []entity.Report) string {
	var ok, failed, skipped int
	for _, r := range reports {
		switch {
		case r.Skipped:
			skipped++
		case r.OK():
			ok++
		default:
			failed++
		}
	}
	parts := []string{
		fmt.Sprintf("%d ok", ok),
		fmt.Sprintf("%d failed", failed),
		fmt.Sprintf("%d skipped", skipped),
	}
	return "summary: " + strings.Join(parts, ", ")
}
