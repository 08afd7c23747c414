package analytics

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
	"github.com/sampattitrack/engine/internal/types"
	"github.com/sampattitrack/engine/internal/xirr"
)

// ComputeAccountXIRR derives the annualized return of one investment
// account from its posting history and stores it on the account together
// with the computation time.
//
// Every posting amount is a contribution to (positive) or withdrawal from
// (negative) the account, so the investor's cash flow is its negation. A
// still-open position gets a synthetic terminal inflow at today's
// mark-to-market value, valued with the latest known unit prices and
// falling back to the account balance for unpriced holdings.
func ComputeAccountXIRR(path string) (float64, error) {
	transactions, err := store.Transactions("", "")
	if err != nil {
		return 0, err
	}

	var flows []xirr.CashFlow
	balance := decimal.Zero
	holdings := map[string]decimal.Decimal{}

	for _, t := range transactions {
		for _, p := range t.Postings {
			if p.AccountPath != path {
				continue
			}

			amount, _ := p.Amount.Float64()
			flows = append(flows, xirr.CashFlow{Date: t.Date, Amount: -amount})
			balance = balance.Add(p.Amount)

			if p.UnitCode != "" {
				holdings[p.UnitCode] = holdings[p.UnitCode].Add(p.Quantity)
			}
		}
	}

	marketValue := markToMarket(holdings, balance)

	value, _ := marketValue.Float64()
	rate, err := xirr.Solve(xirr.WithTerminalValue(flows, value, types.Today()))
	if err != nil {
		return 0, err
	}

	return rate, store.SetAccountXIRR(path, rate)
}

// markToMarket values unit holdings with their latest price. Holdings
// without any stored price fall back to the plain account balance.
func markToMarket(holdings map[string]decimal.Decimal, balance decimal.Decimal) decimal.Decimal {
	if len(holdings) == 0 {
		return balance
	}

	value := decimal.Zero
	priced := false
	for unit, quantity := range holdings {
		price, err := store.LatestPrice(unit)
		if err != nil {
			if errors.Is(err, models.ErrResourceNotFound) {
				continue
			}
			return balance
		}

		value = value.Add(quantity.Mul(price.Price))
		priced = true
	}

	if !priced {
		return balance
	}
	return value
}
