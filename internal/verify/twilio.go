package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	// defaultTwilioEndpoint はTwilio Verify v2 APIのベースURL。
	defaultTwilioEndpoint = "https://verify.twilio.com/v2"
)

// TwilioConfig はTwilio Verifyの認証情報を保持する。
type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	VerifyServiceSID string
}

// Configured は必要な認証情報がすべて設定されているかどうかを返す。
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.VerifyServiceSID != ""
}

// TwilioProvider はTwilio Verify v2 APIのクライアント。
// 認証コードの状態はTwilio側が保持するため、ローカルにセッションを持たない。
type TwilioProvider struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     TwilioConfig
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewTwilioProvider はTwilioProviderの新しいインスタンスを生成する。
func NewTwilioProvider(httpClient *http.Client, logger *slog.Logger, config TwilioConfig) *TwilioProvider {
	return &TwilioProvider{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
		endpoint:   defaultTwilioEndpoint,
	}
}

// twilioVerificationResponse はVerifications/VerificationCheck APIのレスポンス。
type twilioVerificationResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// SendCode はTwilio Verify経由でSMS認証コードを送信する。
// コードの生成と保持はTwilio側で行われるため、MockCodeは常に空になる。
func (p *TwilioProvider) SendCode(ctx context.Context, phoneNumber string) (SendResult, error) {
	form := url.Values{}
	form.Set("To", phoneNumber)
	form.Set("Channel", "sms")

	reqURL := fmt.Sprintf("%s/Services/%s/Verifications", p.endpoint, p.config.VerifyServiceSID)
	resp, err := p.post(ctx, reqURL, form)
	if err != nil {
		return SendResult{}, err
	}

	return SendResult{SID: resp.SID}, nil
}

// CheckCode はTwilio Verifyのチェックエンドポイントにコードを照合する。
// statusが "approved" の場合のみtrueを返す。
func (p *TwilioProvider) CheckCode(ctx context.Context, phoneNumber, code string) (bool, error) {
	form := url.Values{}
	form.Set("To", phoneNumber)
	form.Set("Code", code)

	reqURL := fmt.Sprintf("%s/Services/%s/VerificationCheck", p.endpoint, p.config.VerifyServiceSID)
	resp, err := p.post(ctx, reqURL, form)
	if err != nil {
		return false, err
	}

	return resp.Status == "approved", nil
}

// post はBasic認証付きのフォームPOSTを実行し、レスポンスをパースする。
func (p *TwilioProvider) post(ctx context.Context, reqURL string, form url.Values) (*twilioVerificationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.config.AccountSID, p.config.AuthToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Twilio Verify APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("Twilio APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Error("Twilio Verify APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("Twilio APIがステータス %d を返しました", resp.StatusCode)
	}

	var result twilioVerificationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return &result, nil
}
