package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hitoshi/paylink/internal/model"
)

// RegisterUser は識別子を既存のスマートウォレットに登録する。
func (c *Client) RegisterUser(ctx context.Context, identifier string, identifierType model.IdentifierType, wallet common.Address) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.registry.Transact(opts, "registerUser", identifier, string(identifierType), wallet)
	if err != nil {
		return nil, fmt.Errorf("registerUser: %w", err)
	}
	return tx, nil
}

// WalletByIdentifier は識別子に対応するウォレットアドレスを返す。
func (c *Client) WalletByIdentifier(ctx context.Context, identifier string) (common.Address, error) {
	var out []interface{}
	if err := c.registry.Call(callOpts(ctx), &out, "getWallet", identifier); err != nil {
		return common.Address{}, fmt.Errorf("getWallet: %w", err)
	}
	return *abiAddress(out[0]), nil
}

// IdentifiersByWallet はウォレットに登録された識別子の一覧を返す。
func (c *Client) IdentifiersByWallet(ctx context.Context, wallet common.Address) ([]string, error) {
	var out []interface{}
	if err := c.registry.Call(callOpts(ctx), &out, "getIdentifiers", wallet); err != nil {
		return nil, fmt.Errorf("getIdentifiers: %w", err)
	}
	return out[0].([]string), nil
}

// IsIdentifierAvailable は識別子が未使用かどうかを返す。
func (c *Client) IsIdentifierAvailable(ctx context.Context, identifier string) (bool, error) {
	var out []interface{}
	if err := c.registry.Call(callOpts(ctx), &out, "isAvailable", identifier); err != nil {
		return false, fmt.Errorf("isAvailable: %w", err)
	}
	return out[0].(bool), nil
}

// Resolve は識別子からウォレットへのマッピングを読み取る。
// レジストリのマッピングgetterを使うため、未登録でもrevertしない。
// 未登録または非アクティブの場合はFound=falseを返す。
func (c *Client) Resolve(ctx context.Context, identifier string) (*model.Resolution, error) {
	var out []interface{}
	if err := c.registry.Call(callOpts(ctx), &out, "identifierToUser", identifier); err != nil {
		return nil, fmt.Errorf("identifierToUser: %w", err)
	}

	// 出力は (wallet, identifierType, registeredAt, isActive)。登録時刻は使わない。
	wallet := *abiAddress(out[0])
	identifierType := out[1].(string)
	isActive := out[3].(bool)

	if wallet == ZeroAddress || !isActive {
		return &model.Resolution{Found: false}, nil
	}

	return &model.Resolution{
		Found:      true,
		Wallet:     wallet.Hex(),
		Identifier: identifier,
		Type:       model.IdentifierType(identifierType),
	}, nil
}

// abiAddress はBoundContract.Callの出力をcommon.Addressとして取り出す。
func abiAddress(v interface{}) *common.Address {
	if addr, ok := v.(common.Address); ok {
		return &addr
	}
	return v.(*common.Address)
}
