package chain

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PaymentSentEvent はスマートウォレットのPaymentSentイベント。
type PaymentSentEvent struct {
	From       common.Address
	To         common.Address
	Amount     *big.Int
	Identifier string
}

// PaymentReceivedEvent はスマートウォレットのPaymentReceivedイベント。
type PaymentReceivedEvent struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

var (
	walletABIOnce   sync.Once
	walletABIParsed abi.ABI
)

// WalletABI はスマートウォレットのABIを返す。初回呼び出し時に1度だけパースする。
// 定数のパース失敗はプログラミングエラーなのでpanicする。
func WalletABI() abi.ABI {
	walletABIOnce.Do(func() {
		parsed, err := abi.JSON(strings.NewReader(smartWalletABI))
		if err != nil {
			panic(fmt.Sprintf("invalid smart wallet ABI: %v", err))
		}
		walletABIParsed = parsed
	})
	return walletABIParsed
}

// PaymentSentTopic はPaymentSentイベントのトピックハッシュを返す。
func PaymentSentTopic() common.Hash {
	return WalletABI().Events["PaymentSent"].ID
}

// PaymentReceivedTopic はPaymentReceivedイベントのトピックハッシュを返す。
func PaymentReceivedTopic() common.Hash {
	return WalletABI().Events["PaymentReceived"].ID
}

// DecodePaymentSent はログをPaymentSentイベントとしてデコードする。
// fromとtoはindexedなのでトピックから、残りはデータ部から復元する。
func DecodePaymentSent(log types.Log) (*PaymentSentEvent, error) {
	if len(log.Topics) < 3 || log.Topics[0] != PaymentSentTopic() {
		return nil, fmt.Errorf("not a PaymentSent log")
	}

	var data struct {
		Amount     *big.Int
		Identifier string
	}
	if err := WalletABI().UnpackIntoInterface(&data, "PaymentSent", log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack PaymentSent: %w", err)
	}

	return &PaymentSentEvent{
		From:       common.BytesToAddress(log.Topics[1].Bytes()),
		To:         common.BytesToAddress(log.Topics[2].Bytes()),
		Amount:     data.Amount,
		Identifier: data.Identifier,
	}, nil
}

// DecodePaymentReceived はログをPaymentReceivedイベントとしてデコードする。
func DecodePaymentReceived(log types.Log) (*PaymentReceivedEvent, error) {
	if len(log.Topics) < 3 || log.Topics[0] != PaymentReceivedTopic() {
		return nil, fmt.Errorf("not a PaymentReceived log")
	}

	var data struct {
		Amount *big.Int
	}
	if err := WalletABI().UnpackIntoInterface(&data, "PaymentReceived", log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack PaymentReceived: %w", err)
	}

	return &PaymentReceivedEvent{
		From:   common.BytesToAddress(log.Topics[1].Bytes()),
		To:     common.BytesToAddress(log.Topics[2].Bytes()),
		Amount: data.Amount,
	}, nil
}
