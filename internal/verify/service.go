package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/phone"
)

// SendResult は認証コード送信の結果。
// MockCodeはモックプロバイダーが生成したコード。本番環境への露出可否は
// Serviceが判断し、露出しない場合は空文字になる。
type SendResult struct {
	SID      string
	MockCode string
}

// Provider はSMS認証プロバイダーの抽象。
// モック実装とTwilio実装を設定で切り替える。
type Provider interface {
	// SendCode は認証コードを送信する。
	SendCode(ctx context.Context, phoneNumber string) (SendResult, error)
	// CheckCode はコードを照合し、有効ならtrueを返す。
	CheckCode(ctx context.Context, phoneNumber, code string) (bool, error)
}

// ServiceConfig はServiceの動作設定。
type ServiceConfig struct {
	// ExposeMockCode はモックコードをレスポンスに含めるかどうか。
	// 本番デプロイではfalseにする（モックモードであっても露出しない）。
	ExposeMockCode bool
}

// smsMetrics はSMS送信のメトリクス記録に必要な操作の抽象。
// metrics.Collectorがこれを満たす。
type smsMetrics interface {
	RecordSMSSendSuccess()
	RecordSMSSendFailure()
}

// Service は電話番号認証のアプリケーションサービス。
// 入力検証を行い、プロバイダーへ委譲する。
type Service struct {
	provider Provider
	config   ServiceConfig
	metrics  smsMetrics // 任意。nilの場合は記録しない
}

// NewService はServiceを生成する。
func NewService(provider Provider, config ServiceConfig) *Service {
	return &Service{
		provider: provider,
		config:   config,
	}
}

// WithMetrics はメトリクスコレクターを設定したServiceを返す。
func (s *Service) WithMetrics(m smsMetrics) *Service {
	s.metrics = m
	return s
}

// SendCode は電話番号に認証コードを送信する。
// 電話番号は厳格なE.164形式でなければならない（呼び出し側で正規化済みの前提だが
// ここでも再検証する）。再送は同じ操作の再実行として扱う（専用のレート制限や
// 冪等性トークンは持たない）。
func (s *Service) SendCode(ctx context.Context, phoneNumber string) (SendResult, error) {
	if !phone.IsValidPhoneNumber(phoneNumber) {
		return SendResult{}, model.NewInvalidPhoneError()
	}

	result, err := s.provider.SendCode(ctx, phoneNumber)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSMSSendFailure()
		}
		// プロバイダーが既にAPIErrorを返している場合（未設定など）はそのまま通す。
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return SendResult{}, err
		}
		return SendResult{}, model.NewProviderFailedError(err.Error())
	}
	if s.metrics != nil {
		s.metrics.RecordSMSSendSuccess()
	}

	if !s.config.ExposeMockCode {
		result.MockCode = ""
	}
	return result, nil
}

// CheckCode は認証コードを照合する。
// コードは6桁の数字でなければならない。照合結果が不一致でもエラーにはならず、
// isValid=falseを返す（呼び出し側が再入力を促す）。
func (s *Service) CheckCode(ctx context.Context, phoneNumber, code string) (bool, error) {
	if !phone.IsValidPhoneNumber(phoneNumber) {
		return false, model.NewInvalidPhoneError()
	}
	if !phone.IsValidCode(code) {
		return false, model.NewInvalidCodeError()
	}

	isValid, err := s.provider.CheckCode(ctx, phoneNumber, code)
	if err != nil {
		return false, fmt.Errorf("認証コードの照合に失敗しました: %w", err)
	}
	return isValid, nil
}
