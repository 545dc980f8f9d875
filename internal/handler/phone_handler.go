// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/verify"
)

// VerifyServiceInterface は電話番号認証ハンドラーが必要とするサービスインターフェース。
type VerifyServiceInterface interface {
	// SendCode は認証コードを送信する。
	SendCode(ctx context.Context, phoneNumber string) (verify.SendResult, error)
	// CheckCode は認証コードを照合し、有効ならtrueを返す。
	CheckCode(ctx context.Context, phoneNumber, code string) (bool, error)
}

// PhoneHandler は電話番号認証のHTTPハンドラー。
type PhoneHandler struct {
	service VerifyServiceInterface
}

// NewPhoneHandler はPhoneHandlerを生成する。
func NewPhoneHandler(service VerifyServiceInterface) *PhoneHandler {
	return &PhoneHandler{
		service: service,
	}
}

// sendCodeRequest は認証コード送信リクエストのボディ。
type sendCodeRequest struct {
	Phone string `json:"phone"`
}

// sendCodeResponse は認証コード送信のAPIレスポンス。
// MockCodeはモック認証が有効かつ非本番環境の場合のみ含まれる。
type sendCodeResponse struct {
	Success  bool   `json:"success"`
	SID      string `json:"sid"`
	MockCode string `json:"mockCode,omitempty"`
}

// checkCodeRequest は認証コード照合リクエストのボディ。
type checkCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// checkCodeResponse は認証コード照合のAPIレスポンス。
type checkCodeResponse struct {
	Success bool `json:"success"`
	IsValid bool `json:"isValid"`
}

// SendCode は認証コードのSMS送信を処理する。
// POST /api/phone/send
func (h *PhoneHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	result, err := h.service.SendCode(r.Context(), req.Phone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sendCodeResponse{
		Success:  true,
		SID:      result.SID,
		MockCode: result.MockCode,
	})
}

// CheckCode は認証コードの照合を処理する。
// コード不一致はエラーではなくisValid=falseとして返す。
// POST /api/phone/verify
func (h *PhoneHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	var req checkCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	isValid, err := h.service.CheckCode(r.Context(), req.Phone, req.Code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(checkCodeResponse{
		Success: true,
		IsValid: isValid,
	})
}

// --- ヘルパー関数 ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// invalidRequestError はJSONボディ解析失敗のエラーを生成する。
func invalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidPhone,
		model.ErrCodeInvalidCode,
		model.ErrCodeInvalidIdentifier,
		model.ErrCodeInvalidAmount,
		model.ErrCodeMissingIdentifier:
		return http.StatusBadRequest
	case model.ErrCodeIdentifierTaken, model.ErrCodeAvailabilityPending:
		return http.StatusConflict
	case model.ErrCodeProviderNotConfig:
		return http.StatusInternalServerError
	case model.ErrCodeProviderFailed, model.ErrCodeResolveFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
