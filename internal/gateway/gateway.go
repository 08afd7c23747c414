// Package gateway defines the interface to the remote authoritative server.
//
// The orchestrator only talks to this interface; the surrounding app decides
// what transport actually backs it. List results are raw JSON records so
// that a single malformed record can be skipped during a pull without
// failing the whole batch.
package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sampattitrack/engine/internal/types"
)

// ErrUnauthorized is returned when the server rejects the credentials. The
// orchestrator treats it as a de-auth trigger, never as a retryable failure.
var ErrUnauthorized = errors.New("the server rejected the credentials")

// Page is one page of a paginated listing.
type Page struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
}

// Gateway is the transport contract the sync engine consumes.
type Gateway interface {
	ListTags(ctx context.Context) ([]json.RawMessage, error)
	ListAccounts(ctx context.Context) ([]json.RawMessage, error)
	ListUnits(ctx context.Context) ([]json.RawMessage, error)
	ListTransactions(ctx context.Context, limit, offset int) (Page, error)
	ListPrices(ctx context.Context) ([]json.RawMessage, error)

	GetPortfolio(ctx context.Context) (json.RawMessage, error)
	GetNetWorthHistory(ctx context.Context, interval string) (json.RawMessage, error)
	GetTaxAnalysis(ctx context.Context) (json.RawMessage, error)
	GetCapitalGains(ctx context.Context, year int) (json.RawMessage, error)
	GetCashFlow(ctx context.Context, interval string) (json.RawMessage, error)

	// Submit delivers one queued local write.
	Submit(ctx context.Context, endpoint, method string, payload json.RawMessage) error
}

// Wire records as the server serializes them.

type TagRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type AccountRecord struct {
	Path       string         `json:"path"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Type       string         `json:"type"`
	Currency   string         `json:"currency"`
	ParentPath string         `json:"parentPath"`
	Metadata   map[string]any `json:"metadata"`
}

type UnitRecord struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
}

type PostingRecord struct {
	ID          uuid.UUID       `json:"id"`
	AccountPath string          `json:"accountPath"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCode    string          `json:"unitCode"`
	TagIDs      []string        `json:"tagIds"`
}

type TransactionRecord struct {
	ID          uuid.UUID       `json:"id"`
	Date        types.Date      `json:"date"`
	Description string          `json:"description"`
	Note        string          `json:"note"`
	Postings    []PostingRecord `json:"postings"`
}

type PriceRecord struct {
	UnitCode string          `json:"unitCode"`
	Date     types.Date      `json:"date"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Source   string          `json:"source"`
}
