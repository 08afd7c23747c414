package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sampattitrack/engine/internal/types"
)

// BalanceTolerance is the maximum absolute deviation from zero that the sum
// of a transaction's posting amounts may have.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// Transaction is one double-entry ledger transaction owning an ordered set
// of postings.
//
// Transactions are immutable in spirit: once a copy has been acknowledged by
// the server (Dirty == false), a pull must never overwrite its fields or
// postings. This is what makes two-replica merging possible without any
// server-side conflict resolution.
type Transaction struct {
	DefaultModel
	Date        types.Date `json:"date" gorm:"index"`
	Description string     `json:"description"`
	Note        string     `json:"note,omitempty"`
	Postings    []Posting  `json:"postings" gorm:"constraint:OnDelete:CASCADE"`
	Dirty       bool       `json:"dirty"`
	Deleted     bool       `json:"deleted"` // soft delete, kept for sync-out
}

// Posting is one signed line of a transaction, attributing an amount to one
// account. The account reference is by path and is resolved at read time,
// not enforced by the storage layer.
type Posting struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"-" gorm:"index"`
	Position      int             `json:"position"` // order within the transaction
	AccountPath   string          `json:"accountPath"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:DECIMAL(20,8)"`
	UnitCode      string          `json:"unitCode,omitempty"`
	Tags          []Tag           `json:"tags" gorm:"many2many:posting_tags"`
}

var (
	ErrTransactionUnbalanced  = errors.New("the posting amounts of a transaction must sum to zero")
	ErrTransactionNoPostings  = errors.New("a transaction must have at least one posting")
	ErrTransactionDateInvalid = errors.New("the transaction date must be a valid YYYY-MM-DD date")
)

func (p *Posting) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave trims whitespace from the string fields.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Description = strings.TrimSpace(t.Description)
	t.Note = strings.TrimSpace(t.Note)

	return nil
}

// Validate checks the double-entry invariants. It is called by the writer at
// creation time; records arriving via pull are trusted as the server already
// accepted them.
func (t Transaction) Validate() error {
	if !t.Date.Valid() {
		return fmt.Errorf("%w, got %q", ErrTransactionDateInvalid, t.Date)
	}

	if len(t.Postings) == 0 {
		return ErrTransactionNoPostings
	}

	sum := decimal.Zero
	for _, p := range t.Postings {
		sum = sum.Add(p.Amount)
	}

	if sum.Abs().GreaterThan(BalanceTolerance) {
		return fmt.Errorf("%w: sum is %s", ErrTransactionUnbalanced, sum)
	}

	return nil
}
