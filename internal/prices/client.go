// Package prices はETHの法定通貨建て価格の取得を提供する。
// CoinGecko互換APIの呼び出しと、短期キャッシュ付きの価格サービスを含む。
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// defaultEndpoint はCoinGecko APIのエンドポイント。
const defaultEndpoint = "https://api.coingecko.com/api/v3"

// EthPrice はETHのUSD建て価格と24時間変化率。
type EthPrice struct {
	PriceUSD     float64 `json:"price_usd"`
	Change24hPct float64 `json:"change_24h_pct"`
}

// Client はCoinGecko互換APIのクライアント。
// エンドポイントは運用者が環境変数で差し替えられるため、
// SSRF防止付きのHTTPクライアントを注入して使う。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClient の新しいインスタンスを生成する。
// endpointが空の場合はCoinGecko本番APIを使う。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
	}
}

// FetchEthPrice はETHのUSD建て現在価格と24時間変化率を取得する。
// 取得失敗時はエラーを返す（フォールバック値の適用は呼び出し元が判断する）。
func (c *Client) FetchEthPrice(ctx context.Context) (*EthPrice, error) {
	// リクエストURL構築
	reqURL, err := url.Parse(c.endpoint + "/simple/price")
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("ids", "ethereum")
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("価格APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("価格APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("価格APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	// CoinGeckoのレスポンス形式: {"ethereum":{"usd":2000.5,"usd_24h_change":1.2}}
	var result map[string]struct {
		USD          float64 `json:"usd"`
		USD24hChange float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("価格APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	eth, ok := result["ethereum"]
	if !ok {
		return nil, fmt.Errorf("レスポンスにethereumの価格が含まれていません")
	}

	return &EthPrice{
		PriceUSD:     eth.USD,
		Change24hPct: eth.USD24hChange,
	}, nil
}
