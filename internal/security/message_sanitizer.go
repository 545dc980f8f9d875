// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MessageSanitizerService は支払いに添付される自由記述メッセージを
// サニタイズする。メッセージはプレーンテキストとして扱うため、
// bluemondayのStrictPolicyで全てのHTMLタグと属性を除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MessageSanitizerService は支払いメッセージのサニタイズ機能のインターフェースを定義する。
// インテント組み立て時、メッセージがチェーンに載る前に使用される。
type MessageSanitizerService interface {
	// Sanitize はメッセージから全てのHTMLタグと属性を除去し、
	// 前後の空白を取り除いたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(message string) string
}

// messageSanitizer はMessageSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type messageSanitizer struct {
	policy *bluemonday.Policy
}

// NewMessageSanitizer はMessageSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、scriptやiframeはもちろん
// p等の無害なタグも全て除去され、テキストのみが残る。
func NewMessageSanitizer() *messageSanitizer {
	return &messageSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はメッセージをプレーンテキストへ正規化する。
func (s *messageSanitizer) Sanitize(message string) string {
	return strings.TrimSpace(s.policy.Sanitize(message))
}
