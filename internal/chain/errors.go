package chain

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrNoSigner は書き込み操作に必要なオペレーター鍵が未設定であることを示す。
var ErrNoSigner = errors.New("オペレーター秘密鍵が設定されていないため書き込みできません")

// Kind はチェーン操作の失敗を呼び出し側が扱える粒度に分類したもの。
type Kind string

const (
	// KindUserRejected は署名者がトランザクションを拒否した。
	KindUserRejected Kind = "user_rejected"
	// KindInsufficientFunds は残高不足で実行できなかった。
	KindInsufficientFunds Kind = "insufficient_funds"
	// KindNetworkError はRPC到達性やタイムアウトの問題。リトライで回復しうる。
	KindNetworkError Kind = "network_error"
	// KindContractReverted はコントラクト側のrequire等で実行が巻き戻された。
	KindContractReverted Kind = "contract_reverted"
	// KindUnknown は上記いずれにも分類できなかった失敗。
	KindUnknown Kind = "unknown"
)

// Message は分類に応じたユーザー向けメッセージを返す。
func (k Kind) Message() string {
	switch k {
	case KindUserRejected:
		return "トランザクションが拒否されました"
	case KindInsufficientFunds:
		return "残高が不足しています"
	case KindNetworkError:
		return "ネットワークエラーが発生しました。時間をおいて再度お試しください"
	case KindContractReverted:
		return "コントラクトの実行に失敗しました"
	default:
		return "不明なエラーが発生しました"
	}
}

// Retryable はこの分類の失敗が同一入力のリトライで回復しうるかどうかを返す。
func (k Kind) Retryable() bool {
	return k == KindNetworkError
}

// Classify はRPC境界で発生したエラーをKindに分類する。
// 生のエラー文字列への依存はこの関数に閉じ込め、上位層はKindだけを見る。
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetworkError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetworkError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"):
		return KindUserRejected
	case strings.Contains(msg, "insufficient funds"), strings.Contains(msg, "insufficient balance"):
		return KindInsufficientFunds
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "revert"):
		return KindContractReverted
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "eof"):
		return KindNetworkError
	default:
		return KindUnknown
	}
}
