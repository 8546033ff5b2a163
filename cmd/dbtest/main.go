// dbtest はリモートとローカルのPostgreSQLへの接続を確認し、スキーマとマイグレーションの状態を表示します。
// 失敗はすべて標準出力に報告され、終了コードは常に0です。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"user_backend/internal/feature/dbtest/adapters"
	"user_backend/internal/feature/dbtest/domain/entity"
	"user_backend/internal/feature/dbtest/transport/cli"
	"user_backend/internal/feature/dbtest/usecase"
	"user_backend/internal/platform/logging"
)

const (
	envRemote = "DBTEST_REMOTE_URL"
	envLocal  = "DBTEST_LOCAL_URL"

	defaultLocal   = "Host=localhost;Port=5432;Database=testdb;Username=postgres;Password=password;"
	defaultTimeout = 10 * time.Second
)

func main() {
	fs := flag.NewFlagSet("dbtest", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	remote := fs.String("remote", os.Getenv(envRemote), "remote database URI or key-value connection string (env "+envRemote+")")
	local := fs.String("local", envOr(envLocal, defaultLocal), "local database connection string (env "+envLocal+")")
	timeout := fs.Duration("timeout", defaultTimeout, "per-target timeout")
	if err := fs.Parse(os.Args[1:]); err != nil {
		// -h もここに来る。使い方は出力済み
		return
	}

	logger, closeLog := logging.New(logging.Options{Level: os.Getenv("LOG_LEVEL"), Out: os.Stdout})
	defer func() { _ = closeLog.Close() }()

	targets := []entity.Target{
		{Name: "remote", ConnString: *remote, Detailed: true},
		{Name: "local", ConnString: *local},
	}

	logger.Debug("probing databases", "targets", len(targets), "timeout", *timeout)
	probe := usecase.NewProbeUsecase(usecase.DialerFunc(adapters.Dial), *timeout)
	reports := probe.Run(context.Background(), targets)

	if err := cli.Print(os.Stdout, reports); err != nil {
		logger.Error("failed to write report", "error", err)
		return
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, cli.Summary(reports))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
