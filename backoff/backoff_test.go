package backoff_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/dialog/backoff"
)

func TestConstant_ReturnsFixedDelay(t *testing.T) {
	c := backoff.NewConstant(5 * time.Second)
	for attempt := 1; attempt <= 10; attempt++ {
		if got := c.Delay(attempt); got != 5*time.Second {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, 5*time.Second)
		}
	}
}

func TestExponential_DoublesEachAttempt(t *testing.T) {
	e := backoff.NewExponential(time.Second, time.Hour)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := e.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponential_CapsAtMax(t *testing.T) {
	e := backoff.NewExponential(time.Second, 10*time.Second)

	if got := e.Delay(5); got != 10*time.Second {
		t.Errorf("Delay(5) = %v, want %v (capped at Max)", got, 10*time.Second)
	}
	if got := e.Delay(20); got != 10*time.Second {
		t.Errorf("Delay(20) = %v, want %v (capped at Max)", got, 10*time.Second)
	}
}

func TestExponentialWithJitter_WithinBounds(t *testing.T) {
	e := backoff.NewExponentialWithJitter(time.Second, 10*time.Second)

	for attempt := 1; attempt <= 6; attempt++ {
		base := backoff.NewExponential(time.Second, 10*time.Second).Delay(attempt)
		for range 100 {
			got := e.Delay(attempt)
			if got < base/2 {
				t.Errorf("Delay(%d) = %v, should be >= %v", attempt, got, base/2)
			}
			if got > base {
				t.Errorf("Delay(%d) = %v, should be <= %v", attempt, got, base)
			}
		}
	}
}

func TestExponentialWithJitter_ProducesVariance(t *testing.T) {
	e := backoff.NewExponentialWithJitter(time.Second, time.Minute)

	seen := make(map[time.Duration]bool)
	for range 100 {
		seen[e.Delay(3)] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected variance in jitter, got only %d distinct values", len(seen))
	}
}

func TestDefaultStrategy(t *testing.T) {
	s := backoff.DefaultStrategy()
	if s == nil {
		t.Fatal("DefaultStrategy() returned nil")
	}
	if d := s.Delay(1); d <= 0 || d > 250*time.Millisecond {
		t.Errorf("DefaultStrategy().Delay(1) = %v, want (0, 250ms]", d)
	}
	if d := s.Delay(100); d > 15*time.Second {
		t.Errorf("DefaultStrategy().Delay(100) = %v, want <= 15s", d)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := backoff.Retry(context.Background(), backoff.NewConstant(time.Millisecond), 0, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("refused")
	err := backoff.Retry(context.Background(), backoff.NewConstant(time.Millisecond), 4, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	denied := errors.New("unauthorized")
	err := backoff.Retry(context.Background(), backoff.NewConstant(time.Millisecond), 0, func(context.Context) error {
		calls++
		return backoff.Permanent(denied)
	})
	if !errors.Is(err, denied) {
		t.Fatalf("expected %v, got %v", denied, err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := backoff.Retry(ctx, backoff.NewConstant(time.Hour), 0, func(context.Context) error {
		calls++
		cancel()
		return errors.New("refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPermanent_Nil(t *testing.T) {
	if backoff.Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
