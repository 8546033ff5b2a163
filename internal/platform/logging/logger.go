// Package logging はslogベースの構造化ロガーを構築します。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options はロガーの構築オプションです。
type Options struct {
	Level string    // debug | info | warn | error (不明な値は info)
	File  string    // 空でなければ lumberjack でローテーションしながら追記
	Out   io.Writer // nil の場合は os.Stdout
}

// New は JSON 形式で出力する slog.Logger を生成します。
// 返される io.Closer はファイル出力を閉じるためのもので、ファイル未指定時は何もしません。
func New(opts Options) (*slog.Logger, io.Closer) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out = io.MultiWriter(out, fileWriter)
		closer = fileWriter
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	return slog.New(handler), closer
}

// ParseLevel は文字列をslogのレベルに変換します。
func ParseLevel(value string) slog.Level {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
