// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Verification
	VerifyProvider         string // "mock" または "twilio"
	UseMockVerify          bool
	TwilioAccountSID       string
	TwilioAuthToken        string
	TwilioVerifyServiceSID string
	CodeTTL                time.Duration

	// Chain
	RPCURL                  string
	ChainID                 int64
	OperatorPrivateKey      string
	UserRegistryAddress     string
	WalletFactoryAddress    string
	PaymentProcessorAddress string

	// Database（任意。未設定の場合はインメモリストアのみで動作する）
	DatabaseURL string

	// Indexer
	IndexerInterval       time.Duration
	IndexerWatchWallets   []string // 履歴をインデックスするウォレットアドレス
	IndexerLookbackBlocks int64    // 1サイクルで遡るブロック数

	// Prices
	PriceAPIURL   string
	PriceCacheTTL time.Duration

	// Rate Limit（req/min/IP）
	RateLimitGeneral int
	RateLimitSMSSend int

	// Server
	ServerPort string
	AppEnv     string // "production" の場合はモックコードを露出しない

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.RPCURL = os.Getenv("RPC_URL")
	if cfg.RPCURL == "" {
		missing = append(missing, "RPC_URL")
	}

	cfg.UserRegistryAddress = os.Getenv("USER_REGISTRY_ADDRESS")
	if cfg.UserRegistryAddress == "" {
		missing = append(missing, "USER_REGISTRY_ADDRESS")
	}

	cfg.WalletFactoryAddress = os.Getenv("WALLET_FACTORY_ADDRESS")
	if cfg.WalletFactoryAddress == "" {
		missing = append(missing, "WALLET_FACTORY_ADDRESS")
	}

	cfg.PaymentProcessorAddress = os.Getenv("PAYMENT_PROCESSOR_ADDRESS")
	if cfg.PaymentProcessorAddress == "" {
		missing = append(missing, "PAYMENT_PROCESSOR_ADDRESS")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Verification provider
	cfg.VerifyProvider = getEnvString("VERIFY_PROVIDER", "twilio")
	cfg.UseMockVerify = getEnvBool("USE_MOCK_PHONE_VERIFY", false) || cfg.VerifyProvider == "mock"
	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.TwilioVerifyServiceSID = os.Getenv("TWILIO_VERIFY_SERVICE_SID")
	cfg.CodeTTL = getEnvDuration("VERIFY_CODE_TTL", 5*time.Minute)

	// Optional fields with defaults
	cfg.ChainID = getEnvInt64("CHAIN_ID", 2810)
	cfg.OperatorPrivateKey = os.Getenv("OPERATOR_PRIVATE_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.IndexerInterval = getEnvDuration("INDEXER_INTERVAL", 30*time.Second)
	cfg.IndexerWatchWallets = getEnvStringSlice("INDEXER_WATCH_WALLETS")
	cfg.IndexerLookbackBlocks = getEnvInt64("INDEXER_LOOKBACK_BLOCKS", 5000)
	cfg.PriceAPIURL = getEnvString("PRICE_API_URL", "https://api.coingecko.com/api/v3")
	cfg.PriceCacheTTL = getEnvDuration("PRICE_CACHE_TTL", 60*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSMSSend = getEnvInt("RATE_LIMIT_SMS_SEND", 5)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.AppEnv = getEnvString("APP_ENV", "development")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// IsProduction は本番デプロイ環境かどうかを返す。
// モック認証コードのレスポンス露出を抑止する判定に使用する。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvStringSlice はカンマ区切りの環境変数を文字列スライスとして読み込む。
// 空要素は取り除く。未設定の場合はnilを返す。
func getEnvStringSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var values []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
