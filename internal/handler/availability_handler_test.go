package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/paylink/internal/identifier"
	"github.com/hitoshi/paylink/internal/model"
)

// mockChecker はAvailabilityCheckerInterfaceのテスト用モック。
type mockChecker struct {
	checkFn func(ctx context.Context, raw string) (identifier.Availability, error)
}

func (m *mockChecker) Check(ctx context.Context, raw string) (identifier.Availability, error) {
	return m.checkFn(ctx, raw)
}

func TestAvailability_Available(t *testing.T) {
	checker := &mockChecker{
		checkFn: func(_ context.Context, _ string) (identifier.Availability, error) {
			return identifier.Available, nil
		},
	}
	h := NewAvailabilityHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/api/identifiers/availability?id=alice_99", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	var body availabilityResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Available {
		t.Error("available = false, want true")
	}
	if body.Availability != "available" {
		t.Errorf("availability = %q, want available", body.Availability)
	}
}

func TestAvailability_Taken(t *testing.T) {
	checker := &mockChecker{
		checkFn: func(_ context.Context, _ string) (identifier.Availability, error) {
			return identifier.Taken, nil
		},
	}
	h := NewAvailabilityHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/api/identifiers/availability?id=alice_99", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	var body availabilityResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Available {
		t.Error("available = true, want false")
	}
	if body.Availability != "taken" {
		t.Errorf("availability = %q, want taken", body.Availability)
	}
}

func TestAvailability_MissingID_Returns400(t *testing.T) {
	checker := &mockChecker{
		checkFn: func(_ context.Context, _ string) (identifier.Availability, error) {
			t.Fatal("id未指定時にチェッカーが呼ばれてはならない")
			return identifier.Indeterminate, nil
		},
	}
	h := NewAvailabilityHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/api/identifiers/availability", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAvailability_InvalidIdentifier_Returns400(t *testing.T) {
	checker := &mockChecker{
		checkFn: func(_ context.Context, raw string) (identifier.Availability, error) {
			return identifier.Indeterminate, model.NewInvalidIdentifierError(raw)
		},
	}
	h := NewAvailabilityHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/api/identifiers/availability?id=ab", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != model.ErrCodeInvalidIdentifier {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidIdentifier)
	}
}

func TestAvailability_ChainError_ReturnsIndeterminate(t *testing.T) {
	checker := &mockChecker{
		checkFn: func(_ context.Context, _ string) (identifier.Availability, error) {
			return identifier.Indeterminate, errors.New("connection refused")
		},
	}
	h := NewAvailabilityHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/api/identifiers/availability?id=alice_99", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("照会失敗は500ではなくindeterminateの200で返すべき: status = %d", resp.StatusCode)
	}

	var body availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Available {
		t.Error("判定不能の場合availableはfalseのはず")
	}
	if body.Availability != "indeterminate" {
		t.Errorf("availability = %q, want indeterminate", body.Availability)
	}
}
