package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/phone"
)

// ResolverInterface は識別子解決ハンドラーが必要とするゲートウェイインターフェース。
type ResolverInterface interface {
	// Resolve は識別子からウォレットへのマッピングを読み取る。
	// 未登録の場合はFound=falseを返し、エラーにはならない。
	Resolve(ctx context.Context, identifier string) (*model.Resolution, error)
}

// ResolveHandler は識別子解決のHTTPハンドラー。
type ResolveHandler struct {
	resolver ResolverInterface
}

// NewResolveHandler はResolveHandlerを生成する。
func NewResolveHandler(resolver ResolverInterface) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
	}
}

// resolveResponse は識別子解決のAPIレスポンス。
// 未登録の場合はfound=falseのみを返す。
type resolveResponse struct {
	Success    bool   `json:"success"`
	Found      bool   `json:"found"`
	Wallet     string `json:"wallet,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Resolve は識別子からウォレットアドレスを解決する。
// GET /api/resolve?id=
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingIdentifierError())
		return
	}

	id, ok := phone.ValidateIdentifier(raw)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidIdentifierError(raw))
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), id.Value)
	if err != nil {
		handleServiceError(w, model.NewResolveFailedError(err.Error()))
		return
	}

	resp := resolveResponse{
		Success: true,
		Found:   resolution.Found,
	}
	if resolution.Found {
		resp.Wallet = resolution.Wallet
		resp.Identifier = resolution.Identifier
		resp.Type = string(resolution.Type)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
