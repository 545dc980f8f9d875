package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/paylink/internal/model"
)

// mockSendProvider はProviderのテスト用モック。
type mockSendProvider struct {
	sendFn  func(ctx context.Context, phoneNumber string) (SendResult, error)
	checkFn func(ctx context.Context, phoneNumber, code string) (bool, error)
}

func (m *mockSendProvider) SendCode(ctx context.Context, phoneNumber string) (SendResult, error) {
	if m.sendFn != nil {
		return m.sendFn(ctx, phoneNumber)
	}
	return SendResult{SID: "sid"}, nil
}

func (m *mockSendProvider) CheckCode(ctx context.Context, phoneNumber, code string) (bool, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, phoneNumber, code)
	}
	return false, nil
}

func TestServiceSendCodeRejectsInvalidPhone(t *testing.T) {
	called := false
	svc := NewService(&mockSendProvider{
		sendFn: func(_ context.Context, _ string) (SendResult, error) {
			called = true
			return SendResult{}, nil
		},
	}, ServiceConfig{})

	_, err := svc.SendCode(context.Background(), "1-555-1234")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidPhone {
		t.Fatalf("err = %v, want INVALID_PHONE", err)
	}
	if called {
		t.Error("形式不正の電話番号ではプロバイダーを呼び出さないべき")
	}
}

func TestServiceSendCodeExposesMockCodeWhenAllowed(t *testing.T) {
	svc := NewService(&mockSendProvider{
		sendFn: func(_ context.Context, _ string) (SendResult, error) {
			return SendResult{SID: "mock-1", MockCode: "123456"}, nil
		},
	}, ServiceConfig{ExposeMockCode: true})

	result, err := svc.SendCode(context.Background(), testPhone)
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	if result.MockCode != "123456" {
		t.Errorf("MockCode = %q, want 123456", result.MockCode)
	}
}

func TestServiceSendCodeHidesMockCodeInProduction(t *testing.T) {
	svc := NewService(&mockSendProvider{
		sendFn: func(_ context.Context, _ string) (SendResult, error) {
			return SendResult{SID: "mock-1", MockCode: "123456"}, nil
		},
	}, ServiceConfig{ExposeMockCode: false})

	result, err := svc.SendCode(context.Background(), testPhone)
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}
	// 本番設定ではモックコードを露出しない
	if result.MockCode != "" {
		t.Errorf("MockCode = %q, want empty", result.MockCode)
	}
}

// TestServiceSendCodeProviderFailureReturnsAPIError はプロバイダー呼び出し失敗が
// PROVIDER_FAILEDのAPIErrorへ変換されることを検証する。
func TestServiceSendCodeProviderFailureReturnsAPIError(t *testing.T) {
	svc := NewService(&mockSendProvider{
		sendFn: func(_ context.Context, _ string) (SendResult, error) {
			return SendResult{}, errors.New("twilio down")
		},
	}, ServiceConfig{})

	_, err := svc.SendCode(context.Background(), testPhone)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProviderFailed {
		t.Fatalf("err = %v, want PROVIDER_FAILED", err)
	}
}

// TestServiceSendCodePreservesProviderAPIError はプロバイダーが返すAPIError
// （未設定など）が上書きされずそのまま伝播することを検証する。
func TestServiceSendCodePreservesProviderAPIError(t *testing.T) {
	svc := NewService(&mockSendProvider{
		sendFn: func(_ context.Context, _ string) (SendResult, error) {
			return SendResult{}, model.NewProviderNotConfiguredError()
		},
	}, ServiceConfig{})

	_, err := svc.SendCode(context.Background(), testPhone)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProviderNotConfig {
		t.Fatalf("err = %v, want PROVIDER_NOT_CONFIGURED", err)
	}
}

func TestServiceCheckCodeRejectsInvalidCode(t *testing.T) {
	svc := NewService(&mockSendProvider{}, ServiceConfig{})

	_, err := svc.CheckCode(context.Background(), testPhone, "12345")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCode {
		t.Fatalf("err = %v, want INVALID_CODE", err)
	}
}

func TestServiceCheckCodeDelegates(t *testing.T) {
	svc := NewService(&mockSendProvider{
		checkFn: func(_ context.Context, _, code string) (bool, error) {
			return code == "123456", nil
		},
	}, ServiceConfig{})

	isValid, err := svc.CheckCode(context.Background(), testPhone, "123456")
	if err != nil {
		t.Fatalf("CheckCode() error = %v", err)
	}
	if !isValid {
		t.Error("プロバイダーがtrueを返した場合isValid=trueのはず")
	}
}

func TestServiceCheckCodeProviderError(t *testing.T) {
	svc := NewService(&mockSendProvider{
		checkFn: func(_ context.Context, _, _ string) (bool, error) {
			return false, errors.New("twilio down")
		},
	}, ServiceConfig{})

	if _, err := svc.CheckCode(context.Background(), testPhone, "123456"); err == nil {
		t.Error("プロバイダーエラーはエラーとして伝播すべき")
	}
}
