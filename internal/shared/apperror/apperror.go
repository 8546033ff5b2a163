// Package apperror はアプリケーション全体で共有するエラー分類を定義します。
package apperror

import (
	"errors"
	"fmt"
)

// Kind はエラーの分類を表します。
type Kind string

const (
	// KindConfiguration は接続文字列の欠落や不正など、設定に起因するエラーです。
	KindConfiguration Kind = "configuration"
	// KindConnectivity はデータベースに到達できないエラーです。
	KindConnectivity Kind = "connectivity"
	// KindMigration はスキーマ作成またはマイグレーションの失敗です。
	KindMigration Kind = "migration"
	// KindQuery は接続確立後のクエリ実行エラーです。
	KindQuery Kind = "query"
	// KindUnknown は分類できないエラーです。
	KindUnknown Kind = "unknown"
)

// Error は分類付きのエラーです。Op には失敗した操作名が入ります。
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New は err を指定された分類で包みます。err が nil の場合は nil を返します。
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configuration は設定エラーを生成するショートハンドです。
func Configuration(op string, err error) error { return New(KindConfiguration, op, err) }

// Connectivity は接続エラーを生成するショートハンドです。
func Connectivity(op string, err error) error { return New(KindConnectivity, op, err) }

// Migration はマイグレーションエラーを生成するショートハンドです。
func Migration(op string, err error) error { return New(KindMigration, op, err) }

// Query はクエリエラーを生成するショートハンドです。
func Query(op string, err error) error { return New(KindQuery, op, err) }

// KindOf はエラーチェーン上で最も外側にある分類を返します。
// 分類が見つからない場合は KindUnknown を返します。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Is は err が指定された分類に属するかを判定します。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// RootCause はエラーチェーンの末端のエラーを返します。
func RootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}
