package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// tokenAt はERC20トークンコントラクトへのバインディングを返す。
func (c *Client) tokenAt(token common.Address) *bind.BoundContract {
	return bind.NewBoundContract(token, c.erc20ABI, c.eth, c.eth, c.eth)
}

// TokenDecimals はERC20トークンの小数桁数を返す。
// 金額文字列を整数単位へスケーリングする際に使う。
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	var out []interface{}
	if err := c.tokenAt(token).Call(callOpts(ctx), &out, "decimals"); err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	return out[0].(uint8), nil
}

// TokenBalanceOf はアドレスのERC20トークン残高を返す。
func (c *Client) TokenBalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.tokenAt(token).Call(callOpts(ctx), &out, "balanceOf", owner); err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return out[0].(*big.Int), nil
}

// ApproveToken はspenderに対するERC20トークンの使用許可を付与する。
// トークン払いのバッチ送金前にPaymentProcessorへ許可を与えるために使う。
func (c *Client) ApproveToken(ctx context.Context, token, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.tokenAt(token).Transact(opts, "approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("approve: %w", err)
	}
	return tx, nil
}
