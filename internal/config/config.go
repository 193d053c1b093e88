// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config 服務設定，來源為環境變數（可選 .env 檔）
type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	AccessTokenTTL  time.Duration
	VerificationTTL time.Duration
	WorkerCount     int
	BcryptCost      int
	LogLevel        string
	LogFormat       string
	Debug           bool
	// Testing 為 true 時不啟動背景服務相依檢查，並允許空的 Redis 密碼
	Testing bool
}

var loadDotenv = godotenv.Load

func defaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ACCESS_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("VERIFICATION_TTL", 24*time.Hour)
	v.SetDefault("WORKER_COUNT", 1)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEBUG", false)
}

// Load 讀取 .env（若有指定）與環境變數並回傳 Config
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := loadDotenv(f); err != nil {
			return Config{}, fmt.Errorf("載入 %s 失敗: %w", f, err)
		}
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := Config{
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		VerificationTTL: v.GetDuration("VERIFICATION_TTL"),
		WorkerCount:     v.GetInt("WORKER_COUNT"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		Debug:           v.GetBool("DEBUG"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查必要設定
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("環境變數 DATABASE_URL 未設定")
	}
	if c.RedisAddr == "" {
		return errors.New("環境變數 REDIS_ADDR 未設定")
	}
	if c.RedisPassword == "" && !c.Testing {
		return errors.New("環境變數 REDIS_PASSWORD 未設定")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("無效的 REDIS_DB: %d", c.RedisDB)
	}
	if c.JWTSecret == "" {
		return errors.New("環境變數 JWT_SECRET 未設定")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("無效的 WORKER_COUNT: %d", c.WorkerCount)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("無效的 BCRYPT_COST: %d", c.BcryptCost)
	}
	return nil
}

// TestConfig 測試用設定。資料庫與 Redis 位址來自 TEST_DATABASE_URL / TEST_REDIS_ADDR。
func TestConfig() Config {
	return Config{
		HTTPAddr:        ":0",
		DatabaseURL:     os.Getenv("TEST_DATABASE_URL"),
		RedisAddr:       os.Getenv("TEST_REDIS_ADDR"),
		RedisPassword:   os.Getenv("TEST_REDIS_PASSWORD"),
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		VerificationTTL: time.Hour,
		WorkerCount:     1,
		BcryptCost:      bcrypt.MinCost,
		LogLevel:        "error",
		LogFormat:       "json",
		Debug:           true,
		Testing:         true,
	}
}
