package verify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func testTwilioConfig() TwilioConfig {
	return TwilioConfig{
		AccountSID:       "ACtest",
		AuthToken:        "secret",
		VerifyServiceSID: "VAtest",
	}
}

func newTestTwilioProvider(t *testing.T, handler http.HandlerFunc) *TwilioProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewTwilioProvider(server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)), testTwilioConfig())
	provider.endpoint = server.URL
	return provider
}

func TestTwilioConfigConfigured(t *testing.T) {
	if !testTwilioConfig().Configured() {
		t.Error("すべての認証情報が揃っていればConfiguredはtrueのはず")
	}
	if (TwilioConfig{AccountSID: "AC"}).Configured() {
		t.Error("認証情報が欠けている場合Configuredはfalseのはず")
	}
}

func TestTwilioProviderSendCode(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm url.Values

	provider := newTestTwilioProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"sid": "VE123", "status": "pending"})
	})

	result, err := provider.SendCode(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("SendCode() error = %v", err)
	}

	if result.SID != "VE123" {
		t.Errorf("SID = %q, want VE123", result.SID)
	}
	if result.MockCode != "" {
		t.Error("TwilioプロバイダーはMockCodeを返さないべき")
	}
	if gotPath != "/Services/VAtest/Verifications" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("Basic認証ヘッダーが必要: %q", gotAuth)
	}
	if gotForm.Get("To") != "+15551234567" || gotForm.Get("Channel") != "sms" {
		t.Errorf("form = %v", gotForm)
	}
}

func TestTwilioProviderCheckCodeApproved(t *testing.T) {
	provider := newTestTwilioProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/VerificationCheck") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"sid": "VE123", "status": "approved"})
	})

	isValid, err := provider.CheckCode(context.Background(), "+15551234567", "123456")
	if err != nil {
		t.Fatalf("CheckCode() error = %v", err)
	}
	if !isValid {
		t.Error("status=approved の場合isValid=trueのはず")
	}
}

func TestTwilioProviderCheckCodePending(t *testing.T) {
	provider := newTestTwilioProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sid": "VE123", "status": "pending"})
	})

	isValid, err := provider.CheckCode(context.Background(), "+15551234567", "000000")
	if err != nil {
		t.Fatalf("CheckCode() error = %v", err)
	}
	if isValid {
		t.Error("status!=approved の場合isValid=falseのはず")
	}
}

func TestTwilioProviderErrorStatus(t *testing.T) {
	provider := newTestTwilioProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"message": "rate limited"})
	})

	if _, err := provider.SendCode(context.Background(), "+15551234567"); err == nil {
		t.Error("エラーステータスの場合はエラーを返すべき")
	}
}
