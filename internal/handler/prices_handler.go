package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/paylink/internal/prices"
)

// PriceServiceInterface は価格ハンドラーが必要とするサービスインターフェース。
type PriceServiceInterface interface {
	// EthPrice は現在のETH価格を返す。失敗時はフォールバック値を返すため
	// エラーにはならない。
	EthPrice(ctx context.Context) prices.EthPrice
}

// PricesHandler はETH価格のHTTPハンドラー。
type PricesHandler struct {
	service PriceServiceInterface
}

// NewPricesHandler はPricesHandlerを生成する。
func NewPricesHandler(service PriceServiceInterface) *PricesHandler {
	return &PricesHandler{
		service: service,
	}
}

// ethPriceResponse はETH価格のAPIレスポンス。
type ethPriceResponse struct {
	Success      bool    `json:"success"`
	PriceUSD     float64 `json:"price_usd"`
	Change24hPct float64 `json:"change_24h_pct"`
}

// EthPrice は現在のETH価格を返す。
// GET /api/prices/eth
func (h *PricesHandler) EthPrice(w http.ResponseWriter, r *http.Request) {
	price := h.service.EthPrice(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ethPriceResponse{
		Success:      true,
		PriceUSD:     price.PriceUSD,
		Change24hPct: price.Change24hPct,
	})
}
