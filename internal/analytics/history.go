package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/sampattitrack/engine/internal/types"
)

// NetWorthPoint is one point of the net worth history chart.
type NetWorthPoint struct {
	Date     types.Date      `json:"date"`
	NetWorth decimal.Decimal `json:"netWorth"`
	Baseline bool            `json:"baseline,omitempty"`
}

// NetWorthHistory walks the projection chronologically. Entries strictly
// before the range start accumulate into a baseline point, then one point
// per calendar month within the range is emitted, timestamped at that
// month's last transaction date and carrying the running total after that
// month's transactions.
func (c *Cache) NetWorthHistory(from, until types.Date) ([]NetWorthPoint, error) {
	entries, err := c.Projection()
	if err != nil {
		return nil, err
	}

	if until.IsZero() {
		until = types.Today()
	}

	running := decimal.Zero
	points := []NetWorthPoint{{Date: from, Baseline: true, NetWorth: decimal.Zero}}

	var currentMonth types.Month
	var lastDateInMonth types.Date

	flush := func() {
		if !lastDateInMonth.IsZero() {
			points = append(points, NetWorthPoint{Date: lastDateInMonth, NetWorth: running})
			lastDateInMonth = ""
		}
	}

	for _, e := range entries {
		if e.Date.After(until) {
			break
		}

		impact := e.AssetImpact.Add(e.LiabilityImpact)

		if !from.IsZero() && e.Date.Before(from) {
			running = running.Add(impact)
			points[0].NetWorth = running
			continue
		}

		month := e.Date.Month()
		if !month.Equal(currentMonth) {
			flush()
			currentMonth = month
		}

		running = running.Add(impact)
		lastDateInMonth = e.Date
	}
	flush()

	return points, nil
}
