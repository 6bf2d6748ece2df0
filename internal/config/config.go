package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定。
// グローバルなsingletonにせず、必要な部品へ明示的に渡す。
type Config struct {
	Port string // サーバーポート（8080）

	SQLitePath string // DBファイルのパス

	JWTSecret  string        // JWT署名シークレット
	AccessTTL  time.Duration // access tokenの有効期限
	RefreshTTL time.Duration // refresh tokenの有効期限

	BcryptCost int // パスワードハッシュのwork factor

	RedisAddr     string // 空ならdeny-listはプロセス内メモリ
	RedisPassword string
	RedisDB       int

	GoEnv        string // dev/prod
	CookieSecure bool
}

// Loadは環境変数から設定を読む。
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		SQLitePath: getenv("SQLITE_PATH", "app.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	// 必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	accessMin, err := atoiDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.AccessTTL = time.Duration(accessMin) * time.Minute

	refreshHours, err := atoiDefault("REFRESH_TOKEN_TTL_HOURS", 14*24)
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTTL = time.Duration(refreshHours) * time.Hour

	// 本番は高め（12）、開発はデフォルト（10）でもよい
	cfg.BcryptCost, err = atoiDefault("BCRYPT_COST", 12)
	if err != nil {
		return Config{}, err
	}

	cfg.RedisDB, err = atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}

	cfg.CookieSecure = envBool("COOKIE_SECURE", cfg.GoEnv == "prod")

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
