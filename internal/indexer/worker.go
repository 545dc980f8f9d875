package indexer

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hitoshi/paylink/internal/repository"
)

// indexerMetrics はインデクサーのメトリクス記録に必要な操作の抽象。
// metrics.Collectorがこれを満たす。
type indexerMetrics interface {
	RecordPaymentsIndexed(count int)
	RecordIndexerCycleDuration(duration time.Duration)
}

// Worker は支払いイベントを定期的にインデックスするバックグラウンドジョブ。
// 一定間隔で監視対象ウォレットのログを取得し、リポジトリへUPSERTする。
// IDが決定的なため、同じブロック範囲の再処理は冪等になる。
type Worker struct {
	indexer        *Indexer
	paymentRepo    repository.PaymentRepository
	logger         *slog.Logger
	wallets        []common.Address
	lookbackBlocks int64
	metrics        indexerMetrics // 任意。nilの場合は記録しない
}

// NewWorker はWorkerを生成する。
// lookbackBlocksが0以下の場合はデフォルト値5000を使用する。
func NewWorker(
	ix *Indexer,
	paymentRepo repository.PaymentRepository,
	logger *slog.Logger,
	wallets []string,
	lookbackBlocks int64,
) *Worker {
	if lookbackBlocks <= 0 {
		lookbackBlocks = 5000
	}
	addresses := make([]common.Address, 0, len(wallets))
	for _, w := range wallets {
		addresses = append(addresses, common.HexToAddress(w))
	}
	return &Worker{
		indexer:        ix,
		paymentRepo:    paymentRepo,
		logger:         logger,
		wallets:        addresses,
		lookbackBlocks: lookbackBlocks,
	}
}

// WithMetrics はメトリクスコレクターを設定したWorkerを返す。
func (w *Worker) WithMetrics(m indexerMetrics) *Worker {
	w.metrics = m
	return w
}

// Start は指定間隔のティッカーでワーカーを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (w *Worker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("インデクサーワーカーを開始しました",
		slog.Duration("interval", interval),
		slog.Int("wallet_count", len(w.wallets)),
		slog.Int64("lookback_blocks", w.lookbackBlocks),
	)

	// 起動直後に1回実行
	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error("インデックスサイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("インデクサーワーカーを停止しました")
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("インデックスサイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は直近lookbackBlocksブロックを対象に1サイクル実行する。
// ウォレット単位の失敗はログに残して次のウォレットへ進む。
func (w *Worker) RunOnce(ctx context.Context) error {
	if len(w.wallets) == 0 {
		return nil
	}

	start := time.Now()

	latest, err := w.indexer.source.BlockNumber(ctx)
	if err != nil {
		return err
	}

	fromBlock := big.NewInt(0)
	if latest > uint64(w.lookbackBlocks) {
		fromBlock = new(big.Int).SetUint64(latest - uint64(w.lookbackBlocks))
	}
	toBlock := new(big.Int).SetUint64(latest)

	indexed := 0
	for _, wallet := range w.wallets {
		payments, err := w.indexer.FetchHistory(ctx, wallet, fromBlock, toBlock)
		if err != nil {
			w.logger.Error("ウォレットのインデックスに失敗しました",
				slog.String("wallet", wallet.Hex()),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := w.paymentRepo.UpsertBatch(ctx, payments); err != nil {
			w.logger.Error("支払い履歴の保存に失敗しました",
				slog.String("wallet", wallet.Hex()),
				slog.String("error", err.Error()),
			)
			continue
		}
		indexed += len(payments)
	}

	duration := time.Since(start)
	if w.metrics != nil {
		w.metrics.RecordPaymentsIndexed(indexed)
		w.metrics.RecordIndexerCycleDuration(duration)
	}
	w.logger.Info("インデックスサイクルが完了しました",
		slog.Int("payment_count", indexed),
		slog.Uint64("to_block", latest),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
