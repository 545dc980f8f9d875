// Package chain はデプロイ済みスマートコントラクトへの読み書きゲートウェイを提供する。
// 支払いロジックと不変条件（残高管理、識別子の一意性、手数料処理）は
// コントラクト側が持ち、ここではABI表面の呼び出しのみを行う。
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ZeroAddress はネイティブ通貨（ETH）を示すトークンアドレス。
var ZeroAddress = common.HexToAddress("0x0000000000000000000000000000000000000000")

// ClientConfig はチェーン接続の設定。
type ClientConfig struct {
	RPCURL                  string
	ChainID                 int64
	OperatorPrivateKey      string // 空の場合は読み取り専用
	UserRegistryAddress     string
	WalletFactoryAddress    string
	PaymentProcessorAddress string
}

// Client はethclientと各コントラクトのバインディングを束ねる。
type Client struct {
	eth  *ethclient.Client
	auth *bind.TransactOpts // 読み取り専用の場合はnil

	registry  *bind.BoundContract
	factory   *bind.BoundContract
	processor *bind.BoundContract

	registryABI  abi.ABI
	factoryABI   abi.ABI
	walletABI    abi.ABI
	processorABI abi.ABI
	erc20ABI     abi.ABI
}

// Dial はRPCエンドポイントへ接続し、コントラクトをバインドしたClientを生成する。
// OperatorPrivateKeyが設定されている場合は書き込み用のトランザクタも準備する。
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("RPCエンドポイントへの接続に失敗しました: %w", err)
	}

	c := &Client{eth: eth}

	if c.registryABI, err = abi.JSON(strings.NewReader(userRegistryABI)); err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}
	if c.factoryABI, err = abi.JSON(strings.NewReader(walletFactoryABI)); err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}
	if c.walletABI, err = abi.JSON(strings.NewReader(smartWalletABI)); err != nil {
		return nil, fmt.Errorf("failed to parse wallet ABI: %w", err)
	}
	if c.processorABI, err = abi.JSON(strings.NewReader(paymentProcessorABI)); err != nil {
		return nil, fmt.Errorf("failed to parse processor ABI: %w", err)
	}
	if c.erc20ABI, err = abi.JSON(strings.NewReader(erc20ABI)); err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}

	c.registry = bind.NewBoundContract(common.HexToAddress(cfg.UserRegistryAddress), c.registryABI, eth, eth, eth)
	c.factory = bind.NewBoundContract(common.HexToAddress(cfg.WalletFactoryAddress), c.factoryABI, eth, eth, eth)
	c.processor = bind.NewBoundContract(common.HexToAddress(cfg.PaymentProcessorAddress), c.processorABI, eth, eth, eth)

	if cfg.OperatorPrivateKey != "" {
		key, err := crypto.HexToECDSA(cfg.OperatorPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("オペレーター秘密鍵のパースに失敗しました: %w", err)
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
		if err != nil {
			return nil, fmt.Errorf("トランザクタの生成に失敗しました: %w", err)
		}
		c.auth = auth
	}

	return c, nil
}

// Close はRPC接続を閉じる。
func (c *Client) Close() {
	c.eth.Close()
}

// CanWrite は書き込み用のトランザクタが設定されているかどうかを返す。
func (c *Client) CanWrite() bool {
	return c.auth != nil
}

// WaitMined はトランザクションがブロックに取り込まれるまで待機し、レシートを返す。
// クライアント側のタイムアウトは持たない（ctxのキャンセルのみが打ち切り手段）。
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("トランザクションの確定待ちに失敗しました: %w", err)
	}
	return receipt, nil
}

// transactOpts は書き込み用のTransactOptsを準備する。valueは送金額（nil可）。
func (c *Client) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if c.auth == nil {
		return nil, ErrNoSigner
	}
	opts := *c.auth
	opts.Context = ctx
	opts.Value = value
	return &opts, nil
}

// callOpts は読み取り用のCallOptsを準備する。
func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}
