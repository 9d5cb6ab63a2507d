package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OneDay is the nominal length of a day used for interpolation.
const OneDay = 24 * time.Hour

var maxCents = decimal.NewFromInt(math.MaxInt64)

// DailyInterest returns floor(balance * rate) in cents, computed exactly.
func DailyInterest(balance int64, rate decimal.Decimal) (int64, error) {
	if balance <= 0 || !rate.IsPositive() {
		return 0, nil
	}

	return toCents(decimal.NewFromInt(balance).Mul(rate).Floor())
}

// CompoundCents returns floor(principal * (1+rate)^days) for a whole number of days.
// ErrAmountOverflow when the result does not fit in int64 cents.
func CompoundCents(principal int64, rate decimal.Decimal, days int) (int64, error) {
	if principal <= 0 || days <= 0 {
		return principal, nil
	}

	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(days)))

	return toCents(decimal.NewFromInt(principal).Mul(factor).Floor())
}

// AddCents returns a+b for non-negative amounts, or ErrAmountOverflow.
func AddCents(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrAmountOverflow
	}

	return a + b, nil
}

func toCents(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(maxCents) {
		return 0, ErrAmountOverflow
	}

	return d.IntPart(), nil
}

// Compound returns principal * (1+rate)^days for a possibly fractional number of days.
// Display only; never persist the result.
func Compound(principal, rate, days float64) float64 {
	if days <= 0 {
		return principal
	}

	return principal * math.Pow(1+rate, days)
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := t.In(loc).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AddDays returns local midnight n calendar days after t's day. Calendar arithmetic
// keeps the result on midnight across daylight-saving transitions.
func AddDays(t time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := t.In(loc).Date()

	return time.Date(y, m, d+n, 0, 0, 0, 0, loc)
}

// WholeDaysBetween counts the calendar-day boundaries in loc crossed going from t0 to
// t1. Zero when t1 is not after t0.
func WholeDaysBetween(t0, t1 time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}

	if !t1.After(t0) {
		return 0
	}

	y0, m0, d0 := t0.In(loc).Date()
	y1, m1, d1 := t1.In(loc).Date()

	// UTC has no DST, so the day difference is an exact multiple of 24h.
	start := time.Date(y0, m0, d0, 0, 0, 0, 0, time.UTC)
	end := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)

	return int(end.Sub(start) / OneDay)
}

// RateFloat converts a daily rate for display math.
func RateFloat(rate decimal.Decimal) float64 {
	f, _ := rate.Float64()
	return f
}
