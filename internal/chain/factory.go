package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hitoshi/paylink/internal/model"
)

// DeploymentFee はウォレット作成に必要な手数料を返す。
func (c *Client) DeploymentFee(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.factory.Call(callOpts(ctx), &out, "deploymentFee"); err != nil {
		return nil, fmt.Errorf("deploymentFee: %w", err)
	}
	return out[0].(*big.Int), nil
}

// CreateWallet は識別子なしでスマートウォレットをデプロイする。
// デプロイ手数料を自動で取得し、トランザクションに添付する。
func (c *Client) CreateWallet(ctx context.Context) (*types.Transaction, error) {
	fee, err := c.DeploymentFee(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := c.transactOpts(ctx, fee)
	if err != nil {
		return nil, err
	}

	tx, err := c.factory.Transact(opts, "createWallet")
	if err != nil {
		return nil, fmt.Errorf("createWallet: %w", err)
	}
	return tx, nil
}

// CreateWalletWithIdentifier はウォレット作成と識別子登録を1トランザクションで行う。
func (c *Client) CreateWalletWithIdentifier(ctx context.Context, identifier string, identifierType model.IdentifierType) (*types.Transaction, error) {
	fee, err := c.DeploymentFee(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := c.transactOpts(ctx, fee)
	if err != nil {
		return nil, err
	}

	tx, err := c.factory.Transact(opts, "createWalletWithIdentifier", identifier, string(identifierType))
	if err != nil {
		return nil, fmt.Errorf("createWalletWithIdentifier: %w", err)
	}
	return tx, nil
}

// HasWallet はオーナーアドレスにウォレットが紐づいているかどうかを返す。
func (c *Client) HasWallet(ctx context.Context, owner common.Address) (bool, error) {
	var out []interface{}
	if err := c.factory.Call(callOpts(ctx), &out, "hasWallet", owner); err != nil {
		return false, fmt.Errorf("hasWallet: %w", err)
	}
	return out[0].(bool), nil
}

// WalletOf はオーナーアドレスに紐づくウォレットアドレスを返す。
func (c *Client) WalletOf(ctx context.Context, owner common.Address) (common.Address, error) {
	var out []interface{}
	if err := c.factory.Call(callOpts(ctx), &out, "getWallet", owner); err != nil {
		return common.Address{}, fmt.Errorf("getWallet: %w", err)
	}
	return *abiAddress(out[0]), nil
}
