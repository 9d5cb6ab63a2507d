package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interpolate estimates the display balance at now, including the share of the next
// day's interest earned so far. The estimate is linear in the day fraction, never below
// balance and never above balance*(1+rate). Paused accounts return balance unchanged.
// The result is for display only and must never be persisted.
func Interpolate(balance int64, dailyRate decimal.Decimal, lastAccrualAt, now time.Time, paused bool) float64 {
	return InterpolateFloat(balance, RateFloat(dailyRate), lastAccrualAt, now, paused)
}

// InterpolateFloat is Interpolate with the rate already converted, for pollers that
// call it at high frequency.
func InterpolateFloat(balance int64, rate float64, lastAccrualAt, now time.Time, paused bool) float64 {
	base := float64(balance)
	if paused || balance <= 0 || rate <= 0 {
		return base
	}

	fraction := float64(now.Sub(lastAccrualAt)) / float64(OneDay)

	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}

	value := base + base*rate*fraction
	ceiling := base * (1 + rate)

	if value < base {
		return base
	}

	if value > ceiling {
		return ceiling
	}

	return value
}
