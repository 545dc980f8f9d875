package identifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockRegistry はテスト用のレジストリ照会モック。
type mockRegistry struct {
	isAvailableFunc func(ctx context.Context, identifier string) (bool, error)
	calls           atomic.Int64
}

func (m *mockRegistry) IsIdentifierAvailable(ctx context.Context, identifier string) (bool, error) {
	m.calls.Add(1)
	return m.isAvailableFunc(ctx, identifier)
}

func TestCheckerCheck(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		available bool
		chainErr  error
		want      Availability
		wantErr   bool
	}{
		{
			name:      "未使用の電話番号",
			raw:       "+15551234567",
			available: true,
			want:      Available,
		},
		{
			name:      "使用済みのユーザー名",
			raw:       "alice_99",
			available: false,
			want:      Taken,
		},
		{
			name:    "形式不正はチェーンに問い合わせない",
			raw:     "ab",
			want:    Indeterminate,
			wantErr: true,
		},
		{
			name:     "チェーン照会の失敗",
			raw:      "alice_99",
			chainErr: errors.New("connection refused"),
			want:     Indeterminate,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := &mockRegistry{
				isAvailableFunc: func(ctx context.Context, identifier string) (bool, error) {
					return tt.available, tt.chainErr
				},
			}
			checker := NewChecker(registry, 0)

			got, err := checker.Check(context.Background(), tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
			if tt.name == "形式不正はチェーンに問い合わせない" && registry.calls.Load() != 0 {
				t.Error("invalid format should not hit the registry")
			}
		})
	}
}

func TestCheckerDebounceCoalesces(t *testing.T) {
	registry := &mockRegistry{
		isAvailableFunc: func(ctx context.Context, identifier string) (bool, error) {
			if identifier != "alice_99" {
				t.Errorf("unexpected identifier queried: %s", identifier)
			}
			return true, nil
		},
	}
	checker := NewChecker(registry, 30*time.Millisecond)

	done := make(chan Availability, 1)
	// 連続入力。最後の入力だけが照会される。
	checker.CheckDebounced(context.Background(), "a", func(Availability, error) {
		t.Error("superseded input should not fire")
	})
	checker.CheckDebounced(context.Background(), "al", func(Availability, error) {
		t.Error("superseded input should not fire")
	})
	checker.CheckDebounced(context.Background(), "alice_99", func(result Availability, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- result
	})

	select {
	case result := <-done:
		if result != Available {
			t.Errorf("result = %v, want %v", result, Available)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced check did not fire")
	}

	if got := registry.calls.Load(); got != 1 {
		t.Errorf("registry calls = %d, want 1", got)
	}
}
