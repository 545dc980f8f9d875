package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/paylink/internal/identifier"
	"github.com/hitoshi/paylink/internal/model"
)

// AvailabilityCheckerInterface は可用性ハンドラーが必要とするチェッカーインターフェース。
type AvailabilityCheckerInterface interface {
	// Check は識別子の可用性を即時に照会する。
	Check(ctx context.Context, raw string) (identifier.Availability, error)
}

// AvailabilityHandler は識別子可用性チェックのHTTPハンドラー。
type AvailabilityHandler struct {
	checker AvailabilityCheckerInterface
}

// NewAvailabilityHandler はAvailabilityHandlerを生成する。
func NewAvailabilityHandler(checker AvailabilityCheckerInterface) *AvailabilityHandler {
	return &AvailabilityHandler{
		checker: checker,
	}
}

// availabilityResponse は可用性チェックのAPIレスポンス。
// availableはAvailabilityがavailableの場合のみtrue。
// チェーン照会に失敗した場合はindeterminateを返す（登録はブロックされる）。
type availabilityResponse struct {
	Success      bool   `json:"success"`
	Available    bool   `json:"available"`
	Availability string `json:"availability"`
}

// Check は識別子の可用性を照会する。
// GET /api/identifiers/availability?id=
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingIdentifierError())
		return
	}

	availability, err := h.checker.Check(r.Context(), raw)
	if err != nil {
		// 形式不正は呼び出し側の入力エラーとして返す
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
			return
		}
		// チェーン照会の失敗は判定不能として返す（登録は送信できない）
		availability = identifier.Indeterminate
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(availabilityResponse{
		Success:      true,
		Available:    availability == identifier.Available,
		Availability: string(availability),
	})
}
