package identifier

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/phone"
)

// Availability は可用性チェックの結果。
type Availability string

const (
	// Available は識別子が未使用で登録可能。
	Available Availability = "available"
	// Taken は識別子が使用済み。
	Taken Availability = "taken"
	// Indeterminate は形式不正またはチェーン照会の失敗により判定できない。
	// 登録の送信はAvailable以外では常にブロックする。
	Indeterminate Availability = "indeterminate"
)

// availabilityRegistry はレジストリコントラクトの照会面。
type availabilityRegistry interface {
	IsIdentifierAvailable(ctx context.Context, identifier string) (bool, error)
}

// Checker は識別子の可用性を照会する。
// 入力のたびにRPCを叩かないよう、CheckDebouncedは一定時間入力が
// 落ち着くまで照会を遅延させる。
type Checker struct {
	registry availabilityRegistry
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewChecker はCheckerを生成する。debounceが0以下の場合は500msを使う。
func NewChecker(registry availabilityRegistry, debounce time.Duration) *Checker {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Checker{registry: registry, debounce: debounce}
}

// Check は可用性を即時に照会する。
// 形式検証を先に行い、不正な形式はチェーンに問い合わせずIndeterminateを返す。
func (c *Checker) Check(ctx context.Context, raw string) (Availability, error) {
	id, ok := phone.ValidateIdentifier(raw)
	if !ok {
		return Indeterminate, model.NewInvalidIdentifierError(raw)
	}

	available, err := c.registry.IsIdentifierAvailable(ctx, id.Value)
	if err != nil {
		return Indeterminate, err
	}
	if !available {
		return Taken, nil
	}
	return Available, nil
}

// CheckDebounced は入力をデバウンスしてから照会し、結果をfnに渡す。
// 前回のデバウンス待ちが残っている場合はタイマーをリセットし、
// 最後の入力だけが照会される。fnは別ゴルーチンから呼ばれる。
func (c *Checker) CheckDebounced(ctx context.Context, raw string, fn func(Availability, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		if ctx.Err() != nil {
			fn(Indeterminate, ctx.Err())
			return
		}
		fn(c.Check(ctx, raw))
	})
}
