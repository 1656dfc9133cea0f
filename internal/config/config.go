// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

// ユーザーストアのバックエンド種別
const (
	UserStoreMongo = "mongo"
	UserStoreRedis = "redis"
)

const defaultMongoDatabase = "test"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// 認証設定
	JWTSecret string // セッショントークン署名用の秘密鍵

	// データストア設定
	MongoURI      string // MongoDB接続文字列
	MongoDatabase string // 使用するデータベース名
	UserStore     string // ユーザー保存先 (mongo, redis)
	RedisURL      string // UserStore=redis のときの接続URL

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）
}

// Load は環境変数から設定を読み込みます。
// .env.local / .env ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFiles()

	config := &Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", ""),
		UserStore:     strings.ToLower(getEnv("USER_STORE", UserStoreMongo)),
		RedisURL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.MongoDatabase == "" {
		config.MongoDatabase = databaseFromURI(config.MongoURI)
	}

	return config, nil
}

// godotenv.Load は既存の環境変数を上書きしないため、先に読んだファイルが優先されます。
func loadEnvFiles() {
	dirs := []string{"."}
	if cwd, err := os.Getwd(); err == nil {
		if parent := filepath.Dir(cwd); parent != "" && parent != cwd {
			dirs = append(dirs, parent)
		}
	}

	for _, name := range []string{".env.local", ".env"} {
		for _, dir := range dirs {
			if err := godotenv.Load(filepath.Join(dir, name)); err == nil {
				break
			}
		}
	}
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unsupported GIN_MODE %q (want %s, %s or %s)", c.GinMode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	switch c.UserStore {
	case UserStoreMongo:
	case UserStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when USER_STORE=%s", UserStoreRedis)
		}
	default:
		return fmt.Errorf("unsupported USER_STORE %q (want %s or %s)", c.UserStore, UserStoreMongo, UserStoreRedis)
	}

	return nil
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// databaseFromURI は接続文字列に含まれるデータベース名を返します（なければ "test"）。
func databaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return defaultMongoDatabase
	}
	return cs.Database
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
