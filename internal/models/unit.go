package models

// Unit is a currency, security or other denomination in which posting
// quantities are expressed. Upserted by its natural code.
type Unit struct {
	Code   string `json:"code" gorm:"primaryKey"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
	Type   string `json:"type,omitempty"` // currency, stock, mutual fund, ...
	Dirty  bool   `json:"dirty"`

	Timestamps
}
