package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	tests := []struct {
		attempt int
		base    time.Duration
		want    time.Duration
	}{
		{0, time.Second, time.Second},
		{1, time.Second, 2 * time.Second},
		{3, time.Second, 8 * time.Second},
		{10, time.Second, maxRetryDelay},
		{100, time.Minute, maxRetryDelay},
	}
	for _, tt := range tests {
		if got := backoffDelay(tt.attempt, tt.base); got != tt.want {
			t.Errorf("backoffDelay(%d, %v) = %v, want %v", tt.attempt, tt.base, got, tt.want)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	d := 4 * time.Second
	for i := 0; i < 100; i++ {
		j := jitter(d)
		if j < d || j > d+d/4 {
			t.Fatalf("jitter(%v) = %v, want within [%v, %v]", d, j, d, d+d/4)
		}
	}
	if jitter(0) != 0 {
		t.Error("jitter(0) should stay 0")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(60)
	if !rl.Allow() {
		t.Fatal("first Allow should succeed with the initial token")
	}
	if rl.Allow() {
		t.Error("second immediate Allow should be throttled")
	}
}

func TestIsMarketOpen(t *testing.T) {
	et := eastern()
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"tuesday noon", time.Date(2024, 6, 11, 12, 0, 0, 0, et), true},
		{"tuesday open bell", time.Date(2024, 6, 11, 9, 30, 0, 0, et), true},
		{"tuesday pre-market", time.Date(2024, 6, 11, 9, 0, 0, 0, et), false},
		{"tuesday after close", time.Date(2024, 6, 11, 16, 30, 0, 0, et), false},
		{"saturday", time.Date(2024, 6, 15, 12, 0, 0, 0, et), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMarketOpen(tt.t); got != tt.want {
				t.Errorf("IsMarketOpen(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}
