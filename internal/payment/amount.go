package payment

import (
	"math/big"
	"strings"

	"github.com/hitoshi/paylink/internal/model"
)

// EthDecimals はネイティブ通貨の小数桁数。
const EthDecimals = 18

// ScaleAmount は表示単位の金額文字列をトークンの最小単位の整数へ変換する。
// 浮動小数点は使わず、整数演算のみで行う。
// 小数部がdecimalsより長い場合は切り捨てる。
func ScaleAmount(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, model.NewInvalidAmountError(amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, model.NewInvalidAmountError(amount)
	}

	// 小数部をdecimals桁にゼロ埋めし、超過分は切り捨てる。
	d := int(decimals)
	if len(frac) > d {
		frac = frac[:d]
	}
	frac += strings.Repeat("0", d-len(frac))

	wholeInt, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, model.NewInvalidAmountError(amount)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d)), nil)
	result := new(big.Int).Mul(wholeInt, scale)

	if frac != "" {
		fracInt, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, model.NewInvalidAmountError(amount)
		}
		result.Add(result, fracInt)
	}

	if result.Sign() <= 0 {
		return nil, model.NewInvalidAmountError(amount)
	}
	return result, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
