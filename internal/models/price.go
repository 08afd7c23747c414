package models

import (
	"github.com/shopspring/decimal"

	"github.com/sampattitrack/engine/internal/types"
)

// Price is the quote of a unit on a specific date, keyed by the
// (unit code, date) pair. Prices are point-in-time facts and overwrite
// each other on conflict.
type Price struct {
	UnitCode string          `json:"unitCode" gorm:"primaryKey"`
	Date     types.Date      `json:"date" gorm:"primaryKey"`
	Price    decimal.Decimal `json:"price" gorm:"type:DECIMAL(20,8)"`
	Currency string          `json:"currency"`
	Source   string          `json:"source,omitempty"`

	Timestamps
}
