package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sampattitrack/engine/internal/types"
)

// RunwayCapDays caps the runway KPI for households that effectively never
// run out.
const RunwayCapDays = 9999

// Ratio is a float that can legitimately be +Inf (cash-flow ratio with zero
// expenses). Infinities are encoded as the JSON string "Infinity" since
// plain JSON numbers cannot express them.
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(r), 1) {
		return []byte(`"Infinity"`), nil
	}
	return []byte(decimal.NewFromFloat(float64(r)).String()), nil
}

// Summary is the dashboard headline view for a date range.
type Summary struct {
	From  types.Date `json:"from"`
	Until types.Date `json:"until"`

	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`

	FiscalYTDIncome  decimal.Decimal `json:"fiscalYtdIncome"`
	FiscalYTDExpense decimal.Decimal `json:"fiscalYtdExpense"`

	NetWorth    decimal.Decimal `json:"netWorth"`
	SavingsRate float64         `json:"savingsRate"` // (income-expense)/income

	// Trailing 30 days compared against the 30 days before that
	IncomeDelta30d  decimal.Decimal `json:"incomeDelta30d"`
	ExpenseDelta30d decimal.Decimal `json:"expenseDelta30d"`

	CashFlowRatio    Ratio           `json:"cashFlowRatio"`
	MonthlyBurnRate  decimal.Decimal `json:"monthlyBurnRate"`
	RunwayDays       int             `json:"runwayDays"`
	DebtToAssetRatio float64         `json:"debtToAssetRatio"`
}

// rangeTotals sums income and expense display amounts over an inclusive
// date range.
func rangeTotals(entries []Entry, from, until types.Date) (income, expense decimal.Decimal) {
	for _, e := range entries {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !until.IsZero() && e.Date.After(until) {
			continue
		}

		switch e.Type {
		case EntryIncome:
			income = income.Add(e.DisplayAmount)
		case EntryExpense:
			expense = expense.Add(e.DisplayAmount)
		}
	}
	return
}

// fiscalYearStart returns the first day of the fiscal year the date falls
// in.
func fiscalYearStart(until types.Date, startMonth time.Month) types.Date {
	t := until.Time()
	year := t.Year()
	if t.Month() < startMonth {
		year--
	}
	return types.NewDate(year, startMonth, 1)
}

// Summary computes the headline metrics for the inclusive date range.
func (c *Cache) Summary(from, until types.Date) (Summary, error) {
	entries, err := c.Projection()
	if err != nil {
		return Summary{}, err
	}

	if until.IsZero() {
		until = types.Today()
	}

	s := Summary{From: from, Until: until}
	s.Income, s.Expense = rangeTotals(entries, from, until)
	s.FiscalYTDIncome, s.FiscalYTDExpense = rangeTotals(entries, fiscalYearStart(until, c.FiscalYearStartMonth), until)

	// Point-in-time positions take everything up to the range end
	var assets, liabilities decimal.Decimal
	for _, e := range entries {
		if e.Date.After(until) {
			continue
		}
		assets = assets.Add(e.AssetImpact)
		liabilities = liabilities.Add(e.LiabilityImpact)
	}
	s.NetWorth = assets.Add(liabilities)

	if s.Income.IsPositive() {
		s.SavingsRate, _ = s.Income.Sub(s.Expense).Div(s.Income).Float64()
	}

	// Month-over-month trend windows
	currentIncome, currentExpense := rangeTotals(entries, until.AddDays(-29), until)
	previousIncome, previousExpense := rangeTotals(entries, until.AddDays(-59), until.AddDays(-30))
	s.IncomeDelta30d = currentIncome.Sub(previousIncome)
	s.ExpenseDelta30d = currentExpense.Sub(previousExpense)

	switch {
	case s.Expense.IsPositive():
		ratio, _ := s.Income.Div(s.Expense).Float64()
		s.CashFlowRatio = Ratio(ratio)
	case s.Income.IsPositive():
		s.CashFlowRatio = Ratio(math.Inf(1))
	}

	_, burnExpense := rangeTotals(entries, types.DateOf(until.Time().AddDate(0, -6, 0)), until)
	s.MonthlyBurnRate = burnExpense.Div(decimal.NewFromInt(6))

	s.RunwayDays = runwayDays(assets, s.MonthlyBurnRate)

	if assets.IsPositive() {
		s.DebtToAssetRatio, _ = liabilities.Abs().Div(assets).Mul(decimal.NewFromInt(100)).Float64()
	}

	return s, nil
}

func runwayDays(assets, monthlyBurn decimal.Decimal) int {
	if !assets.IsPositive() {
		return 0
	}
	if !monthlyBurn.IsPositive() {
		return RunwayCapDays
	}

	days := assets.Div(monthlyBurn.Div(decimal.NewFromInt(30)))
	if days.GreaterThan(decimal.NewFromInt(RunwayCapDays)) {
		return RunwayCapDays
	}
	return int(days.IntPart())
}
