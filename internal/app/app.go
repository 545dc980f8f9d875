// Package app はアプリケーションの起動とワイヤリングを提供する。
// serve / worker / migrate / healthcheck の各サブコマンドをここで束ねる。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/paylink/internal/chain"
	"github.com/hitoshi/paylink/internal/config"
	"github.com/hitoshi/paylink/internal/database"
	"github.com/hitoshi/paylink/internal/handler"
	"github.com/hitoshi/paylink/internal/identifier"
	"github.com/hitoshi/paylink/internal/indexer"
	"github.com/hitoshi/paylink/internal/logger"
	"github.com/hitoshi/paylink/internal/metrics"
	"github.com/hitoshi/paylink/internal/middleware"
	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/prices"
	"github.com/hitoshi/paylink/internal/repository"
	"github.com/hitoshi/paylink/internal/security"
	"github.com/hitoshi/paylink/internal/verify"
	"github.com/hitoshi/paylink/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("app_env", cfg.AppEnv),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// チェーンRPCとDB（設定時のみ）への接続を開き、全依存関係をワイヤリングし、
// HTTPサーバーを起動する。SIGINTまたはSIGTERMでグレースフルシャットダウンする。
func runServe(cfg *config.Config) error {
	// 1. チェーンRPC接続
	dialCtx, cancelDial := context.WithTimeout(context.Background(), 15*time.Second)
	chainClient, err := chain.Dial(dialCtx, chain.ClientConfig{
		RPCURL:                  cfg.RPCURL,
		ChainID:                 cfg.ChainID,
		OperatorPrivateKey:      cfg.OperatorPrivateKey,
		UserRegistryAddress:     cfg.UserRegistryAddress,
		WalletFactoryAddress:    cfg.WalletFactoryAddress,
		PaymentProcessorAddress: cfg.PaymentProcessorAddress,
	})
	cancelDial()
	if err != nil {
		return fmt.Errorf("failed to connect to chain RPC: %w", err)
	}
	defer chainClient.Close()

	slog.Info("chain RPC connection established",
		slog.Int64("chain_id", cfg.ChainID),
		slog.Bool("can_write", chainClient.CanWrite()),
	)

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. セッションストアの選択
	// DATABASE_URLが設定されている場合はPostgreSQL、未設定の場合はインメモリ。
	var (
		db           *sql.DB
		sessionStore verify.SessionStore
		purger       cleanup.SessionPurger
	)
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established")

		sessionRepo := repository.NewPostgresSessionRepo(db)
		sessionStore = sessionRepo
		purger = sessionRepo
	} else {
		memStore := verify.NewMemoryStore()
		sessionStore = memStore
		purger = &cleanup.MemoryPurger{Store: memStore}
		slog.Info("DATABASE_URL is not set, using in-memory session store")
	}

	// 4. SMS認証プロバイダーの選択
	var provider verify.Provider
	switch {
	case cfg.UseMockVerify:
		provider = verify.NewMockProvider(sessionStore, cfg.CodeTTL)
		slog.Info("using mock verification provider")
	default:
		twilioCfg := verify.TwilioConfig{
			AccountSID:       cfg.TwilioAccountSID,
			AuthToken:        cfg.TwilioAuthToken,
			VerifyServiceSID: cfg.TwilioVerifyServiceSID,
		}
		if !twilioCfg.Configured() {
			// 起動は継続し、SMS送信リクエスト時にエラーを返す
			slog.Warn("Twilio credentials are not fully configured")
			provider = &notConfiguredProvider{}
			break
		}
		provider = verify.NewTwilioProvider(
			&http.Client{Timeout: 10 * time.Second},
			slog.Default(),
			twilioCfg,
		)
	}

	verifyService := verify.NewService(provider, verify.ServiceConfig{
		// 本番デプロイではモックコードを露出しない
		ExposeMockCode: cfg.UseMockVerify && !cfg.IsProduction(),
	}).WithMetrics(collector)

	// 5. ドメインサービスの初期化
	availabilityChecker := identifier.NewChecker(chainClient, 0)

	ssrfGuard := security.NewSSRFGuard()
	priceClient := prices.NewClient(
		ssrfGuard.NewSafeClient(10*time.Second),
		slog.Default(),
		cfg.PriceAPIURL,
	)
	priceService := prices.NewService(priceClient, slog.Default())

	// 6. 支払い履歴ソースの選択
	// DBがあればインデックス済み履歴を、なければチェーンを直接照会する。
	var paymentHistory handler.PaymentHistoryInterface
	if db != nil {
		paymentHistory = repository.NewPostgresPaymentRepo(db)
	} else {
		eth, err := ethclient.DialContext(context.Background(), cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("failed to connect to chain RPC for history: %w", err)
		}
		defer eth.Close()
		paymentHistory = &chainPaymentHistory{
			indexer:  indexer.New(eth, slog.Default()),
			source:   eth,
			lookback: cfg.IndexerLookbackBlocks,
		}
	}

	// 7. レートリミッターの構築（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.SMSSendRate = rate.Limit(float64(cfg.RateLimitSMSSend) / 60.0)
	rateLimiterCfg.SMSSendBurst = cfg.RateLimitSMSSend
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Metrics:           collector,
		MetricsGatherer:   registry,

		VerifyService:       verifyService,
		Resolver:            chainClient,
		AvailabilityChecker: availabilityChecker,
		PaymentHistory:      paymentHistory,
		PriceService:        priceService,
	})

	// 9. インメモリストア使用時は期限切れセッションの掃除をこのプロセスで行う
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	if db == nil {
		cleanupJob := cleanup.NewJob(purger, slog.Default())
		go cleanupJob.Start(cleanupCtx, 10*time.Minute)
	}

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はインデクサーワーカーモードで起動する。
// 支払いイベントを定期的にインデックスしてDBへ永続化し、
// 期限切れ認証セッションの掃除も行う。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// インデックス済み履歴の保存先が必要なため、ワーカーモードではDBが必須
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for worker mode")
	}

	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established (worker)")

	// 2. チェーンRPC接続（ログ取得用の素のethclientで十分）
	eth, err := ethclient.DialContext(context.Background(), cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to chain RPC: %w", err)
	}
	defer eth.Close()

	// 3. メトリクスとインデクサーの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	paymentRepo := repository.NewPostgresPaymentRepo(db)
	ix := indexer.New(eth, slog.Default())
	worker := indexer.NewWorker(
		ix, paymentRepo, slog.Default(),
		cfg.IndexerWatchWallets, cfg.IndexerLookbackBlocks,
	).WithMetrics(collector)

	// 4. クリーンアップジョブの初期化
	sessionRepo := repository.NewPostgresSessionRepo(db)
	cleanupJob := cleanup.NewJob(sessionRepo, slog.Default())

	// 5. ヘルスチェックとメトリクス公開用の軽量HTTPサーバー
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.Handle("/metrics", metrics.Handler(registry))
	metricsServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("indexer_interval", cfg.IndexerInterval),
		slog.Int("watch_wallet_count", len(cfg.IndexerWatchWallets)),
	)

	// クリーンアップジョブをバックグラウンドで起動
	go cleanupJob.Start(ctx, time.Hour)

	// インデクサーワーカーをメインgoroutineで実行（ブロッキング）
	worker.Start(ctx, cfg.IndexerInterval)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// notConfiguredProvider は認証情報不足のときに差し込むプロバイダー。
// 送信・照合ともに設定不足エラーを返し、起動自体は妨げない。
type notConfiguredProvider struct{}

func (p *notConfiguredProvider) SendCode(_ context.Context, _ string) (verify.SendResult, error) {
	return verify.SendResult{}, model.NewProviderNotConfiguredError()
}

func (p *notConfiguredProvider) CheckCode(_ context.Context, _, _ string) (bool, error) {
	return false, model.NewProviderNotConfiguredError()
}

// chainPaymentHistory はDB未設定時の支払い履歴ソース。
// リクエストのたびに直近lookbackブロックのイベントログをその場で照会する。
type chainPaymentHistory struct {
	indexer  *indexer.Indexer
	source   indexer.LogSource
	lookback int64
}

func (h *chainPaymentHistory) ListByWallet(ctx context.Context, wallet string, limit int) ([]model.IndexedPayment, error) {
	latest, err := h.source.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("最新ブロック番号の取得に失敗しました: %w", err)
	}

	fromBlock := big.NewInt(0)
	if h.lookback > 0 && latest > uint64(h.lookback) {
		fromBlock = new(big.Int).SetUint64(latest - uint64(h.lookback))
	}
	toBlock := new(big.Int).SetUint64(latest)

	payments, err := h.indexer.FetchHistory(ctx, common.HexToAddress(wallet), fromBlock, toBlock)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(payments) > limit {
		payments = payments[:limit]
	}
	return payments, nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
