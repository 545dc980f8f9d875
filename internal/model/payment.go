package model

import (
	"math/big"
	"time"
)

// PaymentIntent は1回の支払い操作を表す一時レコード。
// 永続化されず、1つのワークフローのライフタイムだけ生存する。
type PaymentIntent struct {
	Recipient Identifier
	Amount    *big.Int // 最小単位（wei相当）
	Token     string   // ERC20アドレス。ネイティブ通貨の場合は空
	Message   string   // 任意メッセージ（サニタイズ済み）
}

// BatchRow はバッチ支払いの1行（識別子と表示単位の金額文字列）。
type BatchRow struct {
	Identifier string
	Amount     string
}

// PaymentDirection は支払いの方向を表す。
type PaymentDirection string

const (
	// DirectionSent は送金を示す。
	DirectionSent PaymentDirection = "sent"
	// DirectionReceived は受金を示す。
	DirectionReceived PaymentDirection = "received"
)

// IndexedPayment はチェーン上のイベントログから復元した支払い履歴の1件。
// Walletはログを発行したスマートウォレットのアドレス。履歴の所有者であり、
// イベントのFrom（オーナーEOA）ともToとも一致しないため独立して保持する。
type IndexedPayment struct {
	ID         string
	Wallet     string
	Direction  PaymentDirection
	Amount     *big.Int
	Token      string // ネイティブ通貨は "ETH"
	Identifier string
	From       string
	To         string
	TxHash     string
	Timestamp  time.Time
}
