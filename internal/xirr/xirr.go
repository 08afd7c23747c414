// Package xirr computes the extended internal rate of return of an
// irregularly-dated cash-flow series: the annualized rate that zeroes the
// net present value Σ amountᵢ / (1+r)^(daysᵢ/365).
package xirr

import (
	"errors"
	"math"

	"github.com/sampattitrack/engine/internal/types"
)

// CashFlow is one dated, signed cash movement. Outflows (purchases,
// deposits into an investment) are negative, inflows positive.
type CashFlow struct {
	Date   types.Date
	Amount float64
}

var (
	// ErrSignMix is returned when the flows do not contain both an inflow
	// and an outflow, which makes the rate undefined.
	ErrSignMix = errors.New("cash flows must contain at least one inflow and one outflow")

	// ErrNoConvergence is returned when no root is found within the
	// iteration cap.
	ErrNoConvergence = errors.New("rate computation did not converge")
)

const (
	tolerance = 1e-6
	maxIter   = 100

	// Bisection bracket. Rates below -100% are meaningless and the upper
	// bound is generous for any real portfolio.
	bracketLow  = -0.9999
	bracketHigh = 10.0
)

// Solve returns the annualized rate for the given flows.
//
// Newton's method is tried first, seeded with a small positive guess; if it
// diverges or leaves the meaningful range, bisection over the NPV sign
// change takes over. Day offsets are measured from the earliest flow.
func Solve(flows []CashFlow) (float64, error) {
	if err := checkSigns(flows); err != nil {
		return 0, err
	}

	earliest := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(earliest) {
			earliest = f.Date
		}
	}

	// Precompute year fractions
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = float64(f.Date.DaysSince(earliest)) / 365.0
	}

	npv := func(rate float64) float64 {
		var sum float64
		for i, f := range flows {
			sum += f.Amount / math.Pow(1+rate, years[i])
		}
		return sum
	}

	derivative := func(rate float64) float64 {
		var sum float64
		for i, f := range flows {
			if years[i] == 0 {
				continue
			}
			sum -= years[i] * f.Amount / math.Pow(1+rate, years[i]+1)
		}
		return sum
	}

	rate := 0.1
	for i := 0; i < maxIter; i++ {
		value := npv(rate)
		if math.Abs(value) < tolerance {
			return rate, nil
		}

		slope := derivative(rate)
		if slope == 0 {
			break
		}

		next := rate - value/slope
		if math.IsNaN(next) || next <= bracketLow || next > bracketHigh {
			break
		}
		rate = next
	}

	return bisect(npv)
}

// bisect falls back to bisection over the fixed bracket.
func bisect(npv func(float64) float64) (float64, error) {
	low, high := bracketLow, bracketHigh
	fLow, fHigh := npv(low), npv(high)

	if math.Signbit(fLow) == math.Signbit(fHigh) {
		return 0, ErrNoConvergence
	}

	for i := 0; i < maxIter; i++ {
		mid := (low + high) / 2
		fMid := npv(mid)

		if math.Abs(fMid) < tolerance {
			return mid, nil
		}

		if math.Signbit(fMid) == math.Signbit(fLow) {
			low, fLow = mid, fMid
		} else {
			high = mid
		}
	}

	return 0, ErrNoConvergence
}

func checkSigns(flows []CashFlow) error {
	var hasInflow, hasOutflow bool
	for _, f := range flows {
		if f.Amount > 0 {
			hasInflow = true
		}
		if f.Amount < 0 {
			hasOutflow = true
		}
	}

	if !hasInflow || !hasOutflow {
		return ErrSignMix
	}
	return nil
}

// WithTerminalValue appends a synthetic inflow for the current
// mark-to-market value of a still-open position, dated now. This is how an
// investment without a realized exit gets an annualized-return estimate.
func WithTerminalValue(flows []CashFlow, marketValue float64, now types.Date) []CashFlow {
	if marketValue == 0 {
		return flows
	}

	terminal := make([]CashFlow, len(flows), len(flows)+1)
	copy(terminal, flows)
	return append(terminal, CashFlow{Date: now, Amount: marketValue})
}
