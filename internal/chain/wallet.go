package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// WalletPayment はスマートウォレットが記録する支払い履歴の1件。
// コントラクトのPayment構造体に対応する。
type WalletPayment struct {
	From       common.Address
	To         common.Address
	Amount     *big.Int
	Token      common.Address
	Identifier string
	Timestamp  *big.Int
}

// walletAt は任意のウォレットアドレスに対するバインディングを返す。
// ウォレットはユーザーごとにデプロイされるため、アドレスは呼び出しごとに指定する。
func (c *Client) walletAt(address common.Address) *bind.BoundContract {
	return bind.NewBoundContract(address, c.walletABI, c.eth, c.eth, c.eth)
}

// Deposit はスマートウォレットにネイティブ通貨を入金する。
func (c *Client) Deposit(ctx context.Context, wallet common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, amount)
	if err != nil {
		return nil, err
	}

	tx, err := c.walletAt(wallet).Transact(opts, "deposit")
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	return tx, nil
}

// Withdraw はスマートウォレットからネイティブ通貨を引き出す。
func (c *Client) Withdraw(ctx context.Context, wallet common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.walletAt(wallet).Transact(opts, "withdraw", amount)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	return tx, nil
}

// SendPayment は識別子宛にネイティブ通貨を送金する。
// 識別子からアドレスへの解決はコントラクト内部で行われる。
func (c *Client) SendPayment(ctx context.Context, wallet common.Address, identifier string, amount *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.walletAt(wallet).Transact(opts, "sendPayment", identifier, amount)
	if err != nil {
		return nil, fmt.Errorf("sendPayment: %w", err)
	}
	return tx, nil
}

// SendTokenPayment は識別子宛にERC20トークンを送金する。
func (c *Client) SendTokenPayment(ctx context.Context, wallet common.Address, identifier string, token common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.walletAt(wallet).Transact(opts, "sendTokenPayment", identifier, token, amount)
	if err != nil {
		return nil, fmt.Errorf("sendTokenPayment: %w", err)
	}
	return tx, nil
}

// Balance はウォレット内のネイティブ通貨残高を返す。
func (c *Client) Balance(ctx context.Context, wallet, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.walletAt(wallet).Call(callOpts(ctx), &out, "getBalance", owner); err != nil {
		return nil, fmt.Errorf("getBalance: %w", err)
	}
	return out[0].(*big.Int), nil
}

// TokenBalance はウォレット内のERC20トークン残高を返す。
func (c *Client) TokenBalance(ctx context.Context, wallet, owner, token common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.walletAt(wallet).Call(callOpts(ctx), &out, "getTokenBalance", owner, token); err != nil {
		return nil, fmt.Errorf("getTokenBalance: %w", err)
	}
	return out[0].(*big.Int), nil
}

// SentPayments はウォレットが記録している送金履歴を返す。
func (c *Client) SentPayments(ctx context.Context, wallet, owner common.Address) ([]WalletPayment, error) {
	var out []interface{}
	if err := c.walletAt(wallet).Call(callOpts(ctx), &out, "getSentPayments", owner); err != nil {
		return nil, fmt.Errorf("getSentPayments: %w", err)
	}
	return decodeWalletPayments(out[0])
}

// ReceivedPayments はウォレットが記録している受金履歴を返す。
func (c *Client) ReceivedPayments(ctx context.Context, wallet, owner common.Address) ([]WalletPayment, error) {
	var out []interface{}
	if err := c.walletAt(wallet).Call(callOpts(ctx), &out, "getReceivedPayments", owner); err != nil {
		return nil, fmt.Errorf("getReceivedPayments: %w", err)
	}
	return decodeWalletPayments(out[0])
}

// decodeWalletPayments はABIデコード結果のタプル配列をWalletPaymentに変換する。
func decodeWalletPayments(raw interface{}) ([]WalletPayment, error) {
	rows, ok := raw.([]struct {
		From       common.Address `json:"from"`
		To         common.Address `json:"to"`
		Amount     *big.Int       `json:"amount"`
		Token      common.Address `json:"token"`
		Identifier string         `json:"identifier"`
		Timestamp  *big.Int       `json:"timestamp"`
	})
	if !ok {
		return nil, fmt.Errorf("支払い履歴のデコードに失敗しました: unexpected type %T", raw)
	}

	payments := make([]WalletPayment, len(rows))
	for i, r := range rows {
		payments[i] = WalletPayment{
			From:       r.From,
			To:         r.To,
			Amount:     r.Amount,
			Token:      r.Token,
			Identifier: r.Identifier,
			Timestamp:  r.Timestamp,
		}
	}
	return payments, nil
}
