package config

import (
	"testing"
	"time"
)

// setRequiredEnv は必須環境変数をテスト用に設定する。
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RPC_URL", "https://rpc.example.test")
	t.Setenv("USER_REGISTRY_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("WALLET_FACTORY_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("PAYMENT_PROCESSOR_ADDRESS", "0x3333333333333333333333333333333333333333")
}

func TestLoadRequiredMissing(t *testing.T) {
	t.Setenv("RPC_URL", "")
	t.Setenv("USER_REGISTRY_ADDRESS", "")
	t.Setenv("WALLET_FACTORY_ADDRESS", "")
	t.Setenv("PAYMENT_PROCESSOR_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatal("必須環境変数が未設定の場合はエラーを返すべき")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CodeTTL != 5*time.Minute {
		t.Errorf("CodeTTL = %v, want 5m", cfg.CodeTTL)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.UseMockVerify {
		t.Error("デフォルトではモック認証は無効のはず")
	}
	if cfg.IsProduction() {
		t.Error("デフォルトでは本番環境扱いにならないはず")
	}
}

func TestLoadMockProviderSelection(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VERIFY_PROVIDER", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UseMockVerify {
		t.Error("VERIFY_PROVIDER=mock の場合はUseMockVerifyがtrueのはず")
	}
}

func TestLoadMockFlagSelection(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("USE_MOCK_PHONE_VERIFY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UseMockVerify {
		t.Error("USE_MOCK_PHONE_VERIFY=true の場合はUseMockVerifyがtrueのはず")
	}
}

func TestLoadRateLimitDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitSMSSend != 5 {
		t.Errorf("RateLimitSMSSend = %d, want 5", cfg.RateLimitSMSSend)
	}
}

func TestLoadIndexerSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INDEXER_INTERVAL", "10s")
	t.Setenv("INDEXER_WATCH_WALLETS", "0xaaaa, 0xbbbb, ,0xcccc")
	t.Setenv("INDEXER_LOOKBACK_BLOCKS", "1000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IndexerInterval != 10*time.Second {
		t.Errorf("IndexerInterval = %v, want 10s", cfg.IndexerInterval)
	}
	if len(cfg.IndexerWatchWallets) != 3 {
		t.Fatalf("IndexerWatchWallets count = %d, want 3（空要素は除去される）", len(cfg.IndexerWatchWallets))
	}
	if cfg.IndexerWatchWallets[1] != "0xbbbb" {
		t.Errorf("IndexerWatchWallets[1] = %q, want 0xbbbb", cfg.IndexerWatchWallets[1])
	}
	if cfg.IndexerLookbackBlocks != 1000 {
		t.Errorf("IndexerLookbackBlocks = %d, want 1000", cfg.IndexerLookbackBlocks)
	}
}

func TestIsProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("APP_ENV=production の場合はIsProductionがtrueのはず")
	}
}
