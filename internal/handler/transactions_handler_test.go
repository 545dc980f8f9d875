package handler

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/paylink/internal/model"
)

// mockPaymentHistory はPaymentHistoryInterfaceのテスト用モック。
type mockPaymentHistory struct {
	listByWalletFn func(ctx context.Context, wallet string, limit int) ([]model.IndexedPayment, error)
}

func (m *mockPaymentHistory) ListByWallet(ctx context.Context, wallet string, limit int) ([]model.IndexedPayment, error) {
	return m.listByWalletFn(ctx, wallet, limit)
}

func TestTransactionsList_ReturnsHistory(t *testing.T) {
	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	payments := []model.IndexedPayment{
		{
			ID:        "0xabc-0",
			Direction: model.DirectionSent,
			Amount:    amount,
			Token:     "ETH",
			From:      "0xaaaa",
			To:        "0xbbbb",
			TxHash:    "0xabc",
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	history := &mockPaymentHistory{
		listByWalletFn: func(_ context.Context, wallet string, limit int) ([]model.IndexedPayment, error) {
			if wallet != "0xaaaa" {
				t.Errorf("wallet = %q, want 0xaaaa", wallet)
			}
			if limit != 100 {
				t.Errorf("limit = %d, want default 100", limit)
			}
			return payments, nil
		},
	}
	h := NewTransactionsHandler(history)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?wallet=0xaaaa", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body transactionListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Transactions) != 1 {
		t.Fatalf("transactions count = %d, want 1", len(body.Transactions))
	}
	tx := body.Transactions[0]
	if tx.Amount != "1500000000000000000" {
		t.Errorf("amount = %q, want 10進文字列", tx.Amount)
	}
	if tx.Direction != "sent" {
		t.Errorf("direction = %q, want sent", tx.Direction)
	}
}

func TestTransactionsList_EmptyHistory(t *testing.T) {
	history := &mockPaymentHistory{
		listByWalletFn: func(_ context.Context, _ string, _ int) ([]model.IndexedPayment, error) {
			return nil, nil
		},
	}
	h := NewTransactionsHandler(history)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?wallet=0xcccc", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	var body transactionListResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Transactions == nil {
		t.Error("空の履歴はnullではなく空配列で返すべき")
	}
}

func TestTransactionsList_MissingWallet_Returns400(t *testing.T) {
	history := &mockPaymentHistory{
		listByWalletFn: func(_ context.Context, _ string, _ int) ([]model.IndexedPayment, error) {
			t.Fatal("wallet未指定時にリポジトリが呼ばれてはならない")
			return nil, nil
		},
	}
	h := NewTransactionsHandler(history)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestTransactionsList_CustomLimit(t *testing.T) {
	history := &mockPaymentHistory{
		listByWalletFn: func(_ context.Context, _ string, limit int) ([]model.IndexedPayment, error) {
			if limit != 25 {
				t.Errorf("limit = %d, want 25", limit)
			}
			return nil, nil
		},
	}
	h := NewTransactionsHandler(history)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?wallet=0xaaaa&limit=25", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestTransactionsList_InvalidLimit_Returns400(t *testing.T) {
	history := &mockPaymentHistory{
		listByWalletFn: func(_ context.Context, _ string, _ int) ([]model.IndexedPayment, error) {
			return nil, nil
		},
	}
	h := NewTransactionsHandler(history)

	for _, limit := range []string{"0", "-5", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions?wallet=0xaaaa&limit="+limit, nil)
		w := httptest.NewRecorder()
		h.List(w, req)

		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want %d", limit, w.Result().StatusCode, http.StatusBadRequest)
		}
	}
}
