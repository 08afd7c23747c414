package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
	"github.com/sampattitrack/engine/internal/types"
)

// EntryType classifies a transaction for dashboard purposes.
type EntryType string

const (
	EntryIncome   EntryType = "income"
	EntryExpense  EntryType = "expense"
	EntryTransfer EntryType = "transfer"
)

// Entry is the per-transaction projection the dashboard queries operate on.
// Classification and numeric work happen once at build time because the
// summary and chart queries scan the full projection repeatedly.
type Entry struct {
	TransactionID uuid.UUID
	Date          types.Date
	Type          EntryType
	DisplayAmount decimal.Decimal

	// AssetImpact is the signed change to asset accounts, LiabilityImpact
	// the signed change to liability accounts. Liability balances are
	// negative when money is owed, so net worth is simply the sum of both.
	AssetImpact     decimal.Decimal
	LiabilityImpact decimal.Decimal
}

// project classifies one transaction against the account categories.
func project(t models.Transaction, categories map[string]models.AccountCategory) Entry {
	entry := Entry{
		TransactionID: t.ID,
		Date:          t.Date,
		Type:          EntryTransfer,
	}

	var income, expense, positive decimal.Decimal
	for _, p := range t.Postings {
		switch categories[p.AccountPath] {
		case models.CategoryAsset:
			entry.AssetImpact = entry.AssetImpact.Add(p.Amount)
		case models.CategoryLiability:
			entry.LiabilityImpact = entry.LiabilityImpact.Add(p.Amount)
		case models.CategoryIncome:
			income = income.Add(p.Amount)
		case models.CategoryExpense:
			expense = expense.Add(p.Amount)
		}

		if p.Amount.IsPositive() {
			positive = positive.Add(p.Amount)
		}
	}

	// Income postings carry negative amounts (money flows out of the
	// income account), expense postings positive ones.
	switch {
	case !income.IsZero():
		entry.Type = EntryIncome
		entry.DisplayAmount = income.Abs()
	case !expense.IsZero():
		entry.Type = EntryExpense
		entry.DisplayAmount = expense
	default:
		entry.DisplayAmount = positive
	}

	return entry
}

// buildProjection loads all live transactions and projects them, oldest
// first.
func buildProjection() ([]Entry, error) {
	accounts, err := store.Accounts("")
	if err != nil {
		return nil, err
	}

	categories := make(map[string]models.AccountCategory, len(accounts))
	for _, a := range accounts {
		categories[a.Path] = a.Category
	}

	transactions, err := store.Transactions("", "")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, project(t, categories))
	}

	return entries, nil
}
