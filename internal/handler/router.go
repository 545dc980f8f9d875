package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/paylink/internal/metrics"
	"github.com/hitoshi/paylink/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer

	// サービス
	VerifyService       VerifyServiceInterface
	Resolver            ResolverInterface
	AvailabilityChecker AvailabilityCheckerInterface
	PaymentHistory      PaymentHistoryInterface
	PriceService        PriceServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	phoneHandler := NewPhoneHandler(deps.VerifyService)
	resolveHandler := NewResolveHandler(deps.Resolver)
	availabilityHandler := NewAvailabilityHandler(deps.AvailabilityChecker)
	transactionsHandler := NewTransactionsHandler(deps.PaymentHistory)
	pricesHandler := NewPricesHandler(deps.PriceService)

	// --- 監視用ルート（レート制限の外） ---

	r.Get("/health", Health)
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)。SMS送信はさらに専用レート制限が効く。
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/phone", func(r chi.Router) {
			// SMS送信はプロバイダー課金があるため専用レート制限を追加
			r.With(deps.RateLimiter.SMSSendMiddleware()).Post("/send", phoneHandler.SendCode)
			r.Post("/verify", phoneHandler.CheckCode)
		})

		r.Get("/api/resolve", resolveHandler.Resolve)
		r.Get("/api/identifiers/availability", availabilityHandler.Check)
		r.Get("/api/transactions", transactionsHandler.List)
		r.Get("/api/prices/eth", pricesHandler.EthPrice)
	})

	return r
}
