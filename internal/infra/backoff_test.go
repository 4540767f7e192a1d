package infra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	cases := []struct {
		retry    int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},  // capped
		{20, 60 * time.Second}, // capped
		{-1, 1 * time.Second},  // clamped
	}

	for _, c := range cases {
		if got := CalculateBackoff(c.retry); got != c.expected {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", c.retry, got, c.expected)
		}
	}
}

func TestRetry(t *testing.T) {
	t.Run("Succeeds First Attempt", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), "test", 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("Retry failed: %v", err)
		}
		if calls != 1 {
			t.Errorf("Expected 1 call, got %d", calls)
		}
	})

	t.Run("Exhausts Attempts", func(t *testing.T) {
		wantErr := errors.New("still broken")
		calls := 0
		err := Retry(context.Background(), "test", 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("Expected last error back, got %v", err)
		}
		if calls != 3 {
			t.Errorf("Expected 3 attempts, got %d", calls)
		}
	})

	t.Run("Succeeds Mid-Way", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), "test", 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry failed: %v", err)
		}
		if calls != 2 {
			t.Errorf("Expected 2 attempts, got %d", calls)
		}
	})

	t.Run("Respects Context Cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := Retry(ctx, "test", 3, time.Hour, func(ctx context.Context) error {
			calls++
			return errors.New("fail")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("Backoff sleep should abort on cancellation, got %d calls", calls)
		}
	})
}
