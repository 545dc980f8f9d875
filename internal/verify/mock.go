package verify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/paylink/internal/model"
)

// MockProvider は開発用のSMS認証プロバイダー。
// 実際のSMSは送信せず、コードをSessionStoreに保存する。
// 生成したコードをレスポンスで返すかどうかは呼び出し側（Service）が判断する。
type MockProvider struct {
	store   SessionStore
	codeTTL time.Duration
	now     func() time.Time // テスト用に差し替え可能
}

// NewMockProvider は新しいMockProviderを生成する。
// codeTTLが0以下の場合はデフォルトの5分を使用する。
func NewMockProvider(store SessionStore, codeTTL time.Duration) *MockProvider {
	if codeTTL <= 0 {
		codeTTL = 5 * time.Minute
	}
	return &MockProvider{
		store:   store,
		codeTTL: codeTTL,
		now:     time.Now,
	}
}

// SendCode は6桁のコードを生成してストアに保存する。
// SIDは "mock-<uuid>" 形式。生成したコードも返す。
func (p *MockProvider) SendCode(ctx context.Context, phoneNumber string) (SendResult, error) {
	code, err := generateCode()
	if err != nil {
		return SendResult{}, fmt.Errorf("認証コードの生成に失敗しました: %w", err)
	}

	session := &model.VerificationSession{
		Phone:     phoneNumber,
		Code:      code,
		ExpiresAt: p.now().Add(p.codeTTL),
	}
	if err := p.store.Set(ctx, session); err != nil {
		return SendResult{}, fmt.Errorf("認証セッションの保存に失敗しました: %w", err)
	}

	return SendResult{
		SID:      "mock-" + uuid.NewString(),
		MockCode: code,
	}, nil
}

// CheckCode は保存されたセッションとコードを照合する。
// 一致し、かつ期限内の場合のみtrueを返し、セッションを削除する（ワンタイム）。
// 不一致の場合はセッションを残し、再試行を可能にする。
func (p *MockProvider) CheckCode(ctx context.Context, phoneNumber, code string) (bool, error) {
	session, err := p.store.Get(ctx, phoneNumber)
	if err != nil {
		return false, fmt.Errorf("認証セッションの取得に失敗しました: %w", err)
	}

	if session == nil || session.Code != code || session.Expired(p.now()) {
		return false, nil
	}

	if err := p.store.Delete(ctx, phoneNumber); err != nil {
		return false, fmt.Errorf("認証セッションの削除に失敗しました: %w", err)
	}
	return true, nil
}

// generateCode は暗号学的乱数で6桁のコードを生成する。
// 先頭桁が0でも6桁にゼロ埋めする。
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
