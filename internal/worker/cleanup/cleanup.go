// Package cleanup は期限切れ認証セッションの自動削除ジョブを提供する。
// SMS認証のセッションはTTL（デフォルト10分）を持ち、期限切れの行は
// 定期バッチで削除する。インメモリストアとPostgreSQLストアの両方に対応する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/paylink/internal/verify"
)

// SessionPurger は期限切れセッションの一括削除インターフェース。
// repository.PostgresSessionRepo がこれを満たす。
type SessionPurger interface {
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// MemoryPurger はverify.MemoryStoreをSessionPurgerに適合させるアダプタ。
// DATABASE_URL未設定のモック構成で使用する。
type MemoryPurger struct {
	Store *verify.MemoryStore
}

// DeleteExpired はメモリストアの期限切れセッションを削除する。
func (p *MemoryPurger) DeleteExpired(_ context.Context) (int64, error) {
	return int64(p.Store.PurgeExpired()), nil
}

var _ SessionPurger = (*MemoryPurger)(nil)

// Job は期限切れ認証セッションの定期削除ジョブ。
// 冪等: 削除対象がない場合でもエラーにならない。
type Job struct {
	purger SessionPurger
	logger *slog.Logger
}

// NewJob は新しいJobを生成する。
func NewJob(purger SessionPurger, logger *slog.Logger) *Job {
	return &Job{
		purger: purger,
		logger: logger,
	}
}

// Start は指定間隔のティッカーでジョブを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("セッションクリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	if err := j.Run(ctx); err != nil {
		j.logger.Error("セッションクリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("セッションクリーンアップの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Run は期限切れセッションを1回削除する。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.purger.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
