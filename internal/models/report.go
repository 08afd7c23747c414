package models

import (
	"encoding/json"
	"time"
)

// Report is a point-in-time server-computed snapshot (portfolio, net worth
// history, tax analysis, ...). Snapshots have no merge semantics: the last
// pull wins for each (name, argument) pair.
type Report struct {
	Name      string          `json:"name" gorm:"primaryKey"` // e.g. "portfolio", "capital-gains"
	Argument  string          `json:"argument" gorm:"primaryKey;default:''"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
