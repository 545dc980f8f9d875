package prices

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// cacheTTL は価格キャッシュの生存時間。
// 価格表示は参考値であり、この粒度で十分とする。
const cacheTTL = 60 * time.Second

// fallbackPrice は価格取得に失敗した場合の静的フォールバック値。
var fallbackPrice = EthPrice{PriceUSD: 2000, Change24hPct: 0}

// fetcher は価格取得の抽象。
type fetcher interface {
	FetchEthPrice(ctx context.Context) (*EthPrice, error)
}

// Service はキャッシュとフォールバック付きの価格サービス。
// 取得失敗がUIの支払いフローを止めないよう、エラーは返さず常に値を返す。
type Service struct {
	client fetcher
	logger *slog.Logger
	now    func() time.Time // テスト用に差し替え可能

	mu        sync.Mutex
	cached    EthPrice
	fetchedAt time.Time
}

// NewService はServiceを生成する。
func NewService(client fetcher, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// EthPrice はETHのUSD建て価格を返す。
// 60秒以内に取得済みの値があればそれを返し、なければAPIから取得する。
// 取得に失敗した場合は静的フォールバック値を返す。
func (s *Service) EthPrice(ctx context.Context) EthPrice {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < cacheTTL {
		return s.cached
	}

	price, err := s.client.FetchEthPrice(ctx)
	if err != nil {
		s.logger.Warn("価格の取得に失敗したためフォールバック値を返します",
			slog.String("error", err.Error()),
		)
		// 失敗はキャッシュしない。次の呼び出しで再取得を試みる。
		return fallbackPrice
	}

	s.cached = *price
	s.fetchedAt = now
	return s.cached
}
