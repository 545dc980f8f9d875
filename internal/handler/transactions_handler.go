package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/paylink/internal/model"
)

// PaymentHistoryInterface は取引履歴ハンドラーが必要とするリポジトリインターフェース。
type PaymentHistoryInterface interface {
	// ListByWallet はウォレットが関与した支払いを新しい順に返す。
	ListByWallet(ctx context.Context, wallet string, limit int) ([]model.IndexedPayment, error)
}

// TransactionsHandler はインデックス済み取引履歴のHTTPハンドラー。
type TransactionsHandler struct {
	payments PaymentHistoryInterface
}

// NewTransactionsHandler はTransactionsHandlerを生成する。
func NewTransactionsHandler(payments PaymentHistoryInterface) *TransactionsHandler {
	return &TransactionsHandler{
		payments: payments,
	}
}

// transactionResponse は取引履歴1件のAPIレスポンス。
// 金額は最小単位の10進文字列（JSONの数値では精度が落ちるため）。
type transactionResponse struct {
	ID         string    `json:"id"`
	Direction  string    `json:"direction"`
	Amount     string    `json:"amount"`
	Token      string    `json:"token"`
	Identifier string    `json:"identifier,omitempty"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	TxHash     string    `json:"tx_hash"`
	Timestamp  time.Time `json:"timestamp"`
}

// transactionListResponse は取引履歴一覧のAPIレスポンス。
type transactionListResponse struct {
	Success      bool                  `json:"success"`
	Transactions []transactionResponse `json:"transactions"`
}

// List はウォレットの取引履歴を返す。
// GET /api/transactions?wallet=0x..&limit=
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "MISSING_WALLET",
			Message:  "ウォレットアドレスが指定されていません。",
			Category: "validation",
			Action:   "walletクエリパラメータにアドレスを指定してください。",
		})
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_LIMIT",
				Message:  "limitは正の整数で指定してください。",
				Category: "validation",
				Action:   "limitクエリパラメータを確認してください。",
			})
			return
		}
		limit = parsed
	}

	payments, err := h.payments.ListByWallet(r.Context(), wallet, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	transactions := make([]transactionResponse, len(payments))
	for i, p := range payments {
		transactions[i] = transactionResponse{
			ID:         p.ID,
			Direction:  string(p.Direction),
			Amount:     p.Amount.String(),
			Token:      p.Token,
			Identifier: p.Identifier,
			From:       p.From,
			To:         p.To,
			TxHash:     p.TxHash,
			Timestamp:  p.Timestamp,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactionListResponse{
		Success:      true,
		Transactions: transactions,
	})
}
