package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/verify"
)

type mockPurger struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
	calls           int
}

func (m *mockPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.calls++
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_PurgesExpiredSessions(t *testing.T) {
	purger := &mockPurger{
		deleteExpiredFn: func(_ context.Context) (int64, error) {
			return 3, nil
		},
	}
	job := NewJob(purger, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if purger.calls != 1 {
		t.Errorf("DeleteExpired calls = %d, want 1", purger.calls)
	}
}

func TestRun_PropagatesError(t *testing.T) {
	purger := &mockPurger{
		deleteExpiredFn: func(_ context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	job := NewJob(purger, discardLogger())

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRun_NoExpiredSessions(t *testing.T) {
	purger := &mockPurger{}
	job := NewJob(purger, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("削除対象なしでもエラーにならないこと: %v", err)
	}
}

func TestMemoryPurger_DeletesOnlyExpired(t *testing.T) {
	store := verify.NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	expired := &model.VerificationSession{
		Phone:     "+15551110000",
		Code:      "123456",
		ExpiresAt: now.Add(-time.Minute),
	}
	valid := &model.VerificationSession{
		Phone:     "+15552220000",
		Code:      "654321",
		ExpiresAt: now.Add(10 * time.Minute),
	}
	if err := store.Set(ctx, expired); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, valid); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	purger := &MemoryPurger{Store: store}
	deleted, err := purger.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	session, err := store.Get(ctx, valid.Phone)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if session == nil {
		t.Error("有効なセッションまで削除されている")
	}
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	purger := &mockPurger{}
	job := NewJob(purger, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	// 起動直後の1回実行を待ってからキャンセル
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Startがコンテキストキャンセルで停止しない")
	}

	if purger.calls != 1 {
		t.Errorf("起動直後の実行回数 = %d, want 1", purger.calls)
	}
}
