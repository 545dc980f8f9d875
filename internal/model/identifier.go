// Package model はドメインモデルを定義する。
package model

import "time"

// IdentifierType は識別子の種別を表す。
type IdentifierType string

const (
	// IdentifierTypePhone はE.164形式の電話番号識別子。
	IdentifierTypePhone IdentifierType = "phone"
	// IdentifierTypeUsername はユーザー名識別子（3〜20文字の英数字・ドット・アンダースコア）。
	IdentifierTypeUsername IdentifierType = "username"
)

// Identifier はウォレットアドレスに紐づくユーザー向けハンドル。
// グローバルな一意性はオンチェーンのレジストリコントラクトが保証する。
// ローカルでは送信前に正規表現による形式検証のみを行う。
type Identifier struct {
	Value string
	Type  IdentifierType
}

// VerificationSession は電話番号認証の一時セッション。
// モックプロバイダーのみが保持し、認証成功時に削除される（ワンタイム）。
type VerificationSession struct {
	Phone     string
	Code      string
	ExpiresAt time.Time
}

// Expired はセッションが期限切れかどうかを返す。
func (s *VerificationSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Resolution は識別子からウォレットアドレスへの解決結果。
type Resolution struct {
	Found      bool
	Wallet     string
	Identifier string
	Type       IdentifierType
}
