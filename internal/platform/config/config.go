// Package config はWeb APIの設定を環境変数と appsettings.json から読み込みます。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"user_backend/internal/shared/apperror"
)

const (
	// EnvDefaultConnection は接続文字列を上書きする環境変数名です。
	EnvDefaultConnection = "ConnectionStrings__DefaultConnection"
	// EnvSettingsPath は appsettings.json のパスを上書きする環境変数名です。
	EnvSettingsPath = "APPSETTINGS_PATH"

	defaultSettingsPath = "appsettings.json"
	defaultHTTPAddr     = ":8080"
	defaultCacheTTL     = 5 * time.Minute
)

// ErrMissingConnection は DefaultConnection が見つからない場合に返されます。
var ErrMissingConnection = errors.New("database connection string not found; " +
	"set the " + EnvDefaultConnection + " environment variable or configure " +
	"ConnectionStrings.DefaultConnection in appsettings.json")

// Config はWeb APIの実行時設定です。
type Config struct {
	DefaultConnection string        // URI形式またはキーバリュー形式の接続文字列
	HTTPAddr          string        // 待ち受けアドレス (例: ":8080")
	Redis             RedisConfig   // キャッシュ用Redis
	UserCacheTTL      time.Duration // ユーザーキャッシュのTTL
	LogLevel          string        // debug | info | warn | error
	LogFile           string        // 空でなければローテーション付きで追記
}

// RedisConfig はRedis接続設定です。Host が空の場合キャッシュは無効です。
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr は host:port 形式のアドレスを返します。
func (r RedisConfig) Addr() string {
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

// Enabled はRedisが設定されているかを返します。
func (r RedisConfig) Enabled() bool { return r.Host != "" }

type appSettings struct {
	ConnectionStrings struct {
		DefaultConnection string `json:"DefaultConnection"`
	} `json:"ConnectionStrings"`
}

// Load は設定を読み込みます。
// 接続文字列は環境変数が優先され、無ければ appsettings.json を参照します。
// どちらにも無い場合は設定エラーを返します。
func Load() (Config, error) {
	path := os.Getenv(EnvSettingsPath)
	if path == "" {
		path = defaultSettingsPath
	}
	settings, err := readSettings(path)
	if err != nil {
		return Config{}, err
	}

	cfg := LoadConfigFromEnv()
	if cfg.DefaultConnection == "" {
		cfg.DefaultConnection = settings.ConnectionStrings.DefaultConnection
	}
	if cfg.DefaultConnection == "" {
		return Config{}, apperror.Configuration("load config", ErrMissingConnection)
	}

	if raw := os.Getenv("USER_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, apperror.Configuration("load config", fmt.Errorf("invalid USER_CACHE_TTL: %w", err))
		}
		cfg.UserCacheTTL = ttl
	}
	return cfg, nil
}

// LoadConfigFromEnv は環境変数だけから設定を組み立てます。未設定の項目はデフォルト値になります。
func LoadConfigFromEnv() Config {
	cfg := Config{
		DefaultConnection: os.Getenv(EnvDefaultConnection),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     os.Getenv("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		UserCacheTTL: defaultCacheTTL,
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFile:      os.Getenv("LOG_FILE"),
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	return cfg
}

func readSettings(path string) (appSettings, error) {
	var s appSettings
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, apperror.Configuration("read "+path, err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, apperror.Configuration("parse "+path, err)
	}
	return s, nil
}
