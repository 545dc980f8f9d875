// Package indexer はスマートウォレットの支払いイベントのインデックス処理を提供する。
// チェーン上のPaymentSent / PaymentReceivedログを取得・デコードし、
// ブロックタイムスタンプで補完した履歴をリポジトリへ永続化する。
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hitoshi/paylink/internal/chain"
	"github.com/hitoshi/paylink/internal/model"
)

// LogSource はインデックスに必要なチェーン読み取りの抽象。
// *ethclient.Client がこれを満たす。テストではモックに差し替える。
type LogSource interface {
	// FilterLogs は条件に一致するイベントログを返す。
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	// HeaderByNumber は指定ブロックのヘッダーを返す。タイムスタンプ補完に使う。
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	// BlockNumber は最新のブロック番号を返す。
	BlockNumber(ctx context.Context) (uint64, error)
}

// Indexer は支払いイベントログの取得とデコードを行う。
type Indexer struct {
	source LogSource
	logger *slog.Logger
}

// New はIndexerを生成する。
func New(source LogSource, logger *slog.Logger) *Indexer {
	return &Indexer{
		source: source,
		logger: logger,
	}
}

// FetchHistory は指定ウォレットの支払い履歴をブロック範囲から取得する。
// PaymentSentは送金、PaymentReceivedは受金として記録する。
// 結果はタイムスタンプの新しい順に整列される。
func (ix *Indexer) FetchHistory(ctx context.Context, wallet common.Address, fromBlock, toBlock *big.Int) ([]model.IndexedPayment, error) {
	logs, err := ix.source.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Addresses: []common.Address{wallet},
		Topics: [][]common.Hash{
			{chain.PaymentSentTopic(), chain.PaymentReceivedTopic()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("イベントログの取得に失敗しました: %w", err)
	}

	// 同一ブロックのヘッダーを何度も取得しないようキャッシュする。
	timestamps := make(map[uint64]time.Time)
	blockTime := func(number uint64) (time.Time, error) {
		if ts, ok := timestamps[number]; ok {
			return ts, nil
		}
		header, err := ix.source.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return time.Time{}, fmt.Errorf("ブロックヘッダーの取得に失敗しました: %w", err)
		}
		ts := time.Unix(int64(header.Time), 0).UTC()
		timestamps[number] = ts
		return ts, nil
	}

	var payments []model.IndexedPayment
	for _, log := range logs {
		// reorgで取り消されたログは無視する。
		if log.Removed {
			continue
		}

		payment, err := ix.decode(log)
		if err != nil {
			ix.logger.Warn("デコードできないログをスキップします",
				slog.String("tx", log.TxHash.Hex()),
				slog.Uint64("block", log.BlockNumber),
				slog.String("error", err.Error()),
			)
			continue
		}

		ts, err := blockTime(log.BlockNumber)
		if err != nil {
			return nil, err
		}
		payment.Timestamp = ts
		payments = append(payments, *payment)
	}

	// 新しい順。同一タイムスタンプ内はログ位置由来のIDで安定させる。
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].Timestamp.Equal(payments[j].Timestamp) {
			return payments[i].Timestamp.After(payments[j].Timestamp)
		}
		return payments[i].ID > payments[j].ID
	})

	return payments, nil
}

// decode はログをIndexedPaymentへ変換する。タイムスタンプは呼び出し側が補完する。
// IDはログ位置から決定的に生成し、再処理時のUPSERTを冪等にする。
// Walletにはログを発行したスマートウォレット（log.Address）を記録する。
// イベントのFromはオーナーEOAなのでウォレット判定には使えない。
func (ix *Indexer) decode(log types.Log) (*model.IndexedPayment, error) {
	id := fmt.Sprintf("%s-%d", log.TxHash.Hex(), log.Index)

	switch log.Topics[0] {
	case chain.PaymentSentTopic():
		event, err := chain.DecodePaymentSent(log)
		if err != nil {
			return nil, err
		}
		return &model.IndexedPayment{
			ID:         id,
			Wallet:     log.Address.Hex(),
			Direction:  model.DirectionSent,
			Amount:     event.Amount,
			Token:      "ETH",
			Identifier: event.Identifier,
			From:       event.From.Hex(),
			To:         event.To.Hex(),
			TxHash:     log.TxHash.Hex(),
		}, nil
	case chain.PaymentReceivedTopic():
		event, err := chain.DecodePaymentReceived(log)
		if err != nil {
			return nil, err
		}
		return &model.IndexedPayment{
			ID:        id,
			Wallet:    log.Address.Hex(),
			Direction: model.DirectionReceived,
			Amount:    event.Amount,
			Token:     "ETH",
			From:      event.From.Hex(),
			To:        event.To.Hex(),
			TxHash:    log.TxHash.Hex(),
		}, nil
	default:
		return nil, fmt.Errorf("unexpected event topic: %s", log.Topics[0].Hex())
	}
}
