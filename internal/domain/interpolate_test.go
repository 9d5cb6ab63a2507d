package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInterpolate_MonotonicAndBounded(t *testing.T) {
	rate := decimal.RequireFromString("0.01")
	last := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	const balance = 10000
	ceiling := float64(balance) * 1.01

	prev := float64(balance)
	for step := time.Duration(0); step <= 26*time.Hour; step += 7 * time.Minute {
		got := Interpolate(balance, rate, last, last.Add(step), false)

		if got < prev {
			t.Fatalf("value decreased at %v: %v < %v", step, got, prev)
		}
		if got > ceiling {
			t.Fatalf("value above ceiling at %v: %v", step, got)
		}
		if got < balance {
			t.Fatalf("value below balance at %v: %v", step, got)
		}

		prev = got
	}

	if prev != ceiling {
		t.Fatalf("expected value to reach ceiling after a full day, got %v", prev)
	}
}

func TestInterpolate_EdgeCases(t *testing.T) {
	rate := decimal.RequireFromString("0.02")
	last := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		balance int64
		now     time.Time
		paused  bool
		want    float64
	}{
		{name: "at marker", balance: 5000, now: last, want: 5000},
		{name: "clock behind marker", balance: 5000, now: last.Add(-time.Hour), want: 5000},
		{name: "quarter day", balance: 5000, now: last.Add(6 * time.Hour), want: 5025},
		{name: "paused", balance: 5000, now: last.Add(12 * time.Hour), paused: true, want: 5000},
		{name: "zero balance", balance: 0, now: last.Add(12 * time.Hour), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpolate(tt.balance, rate, last, tt.now, tt.paused); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func BenchmarkInterpolateFloat(b *testing.B) {
	last := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	now := last.Add(9 * time.Hour)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = InterpolateFloat(123456, 0.015, last, now, false)
	}
}
