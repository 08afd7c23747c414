package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AccountCategory is the accounting category of an account.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "Asset"
	CategoryLiability AccountCategory = "Liability"
	CategoryIncome    AccountCategory = "Income"
	CategoryExpense   AccountCategory = "Expense"
	CategoryEquity    AccountCategory = "Equity"
)

// Valid reports whether the category is one of the five accounting categories.
func (c AccountCategory) Valid() bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryIncome, CategoryExpense, CategoryEquity:
		return true
	}
	return false
}

// Account represents one node in the account hierarchy, e.g. "Assets:Checking:Foo".
type Account struct {
	Path       string          `json:"path" gorm:"primaryKey"` // hierarchical path, unique
	Name       string          `json:"name"`
	Category   AccountCategory `json:"category"`
	Type       string          `json:"type"` // free-form: Cash, Investment, CreditCard, ...
	Currency   string          `json:"currency"`
	ParentPath string          `json:"parentPath,omitempty"`
	Metadata   Metadata        `json:"metadata,omitempty"`

	// Cached annualized return for investment accounts, with the time it
	// was computed so readers can decide whether it is stale.
	CachedXIRR     *float64   `json:"cachedXIRR,omitempty"`
	XIRRComputedAt *time.Time `json:"xirrComputedAt,omitempty"`

	// Dirty marks local edits the server has not acknowledged yet. A pull
	// never sets this to true.
	Dirty bool `json:"dirty"`

	Timestamps
}

var (
	ErrAccountPathEmpty       = errors.New("the account path must not be empty")
	ErrAccountCategoryInvalid = errors.New("the account category must be one of Asset, Liability, Income, Expense or Equity")
)

// BeforeSave validates the account and derives the parent path from the
// path when it is not set explicitly.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Path = strings.TrimSpace(a.Path)
	a.Name = strings.TrimSpace(a.Name)

	if a.Path == "" {
		return ErrAccountPathEmpty
	}

	if !a.Category.Valid() {
		return fmt.Errorf("%w, got %q", ErrAccountCategoryInvalid, a.Category)
	}

	if a.ParentPath == "" {
		if i := strings.LastIndex(a.Path, ":"); i > 0 {
			a.ParentPath = a.Path[:i]
		}
	}

	return nil
}

// NetWorthSign returns the factor with which balances on this account
// contribute to net worth: +1 for assets, -1 for liabilities, 0 otherwise.
func (a Account) NetWorthSign() int {
	switch a.Category {
	case CategoryAsset:
		return 1
	case CategoryLiability:
		return -1
	}
	return 0
}
