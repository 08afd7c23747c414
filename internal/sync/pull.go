package sync

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sampattitrack/engine/internal/gateway"
	"github.com/sampattitrack/engine/internal/metrics"
	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
)

// pull fetches remote resources in a fixed order and merges them into the
// local store. Later resources depend on earlier ones being present
// (postings reference tags), so a resource failure aborts the remainder of
// the pull. Batches that already committed stay committed.
//
// Individual records that cannot be decoded are skipped and counted, never
// fatal to their batch.
func (o *Orchestrator) pull(ctx context.Context, scope Scope) bool {
	steps := []struct {
		resource string
		run      func(context.Context) error
		scopes   []Scope
	}{
		{"tags", o.pullTags, []Scope{ScopeAll, ScopeTransactions}},
		{"accounts", o.pullAccounts, []Scope{ScopeAll, ScopeTransactions}},
		{"units", o.pullUnits, []Scope{ScopeAll, ScopeTransactions}},
		{"transactions", o.pullTransactions, []Scope{ScopeAll, ScopeTransactions}},
		{"prices", o.pullPrices, []Scope{ScopeAll}},
		{"reports", o.pullReports, []Scope{ScopeAll, ScopeReports}},
	}

	for _, step := range steps {
		if !scopeMatches(step.scopes, scope) {
			continue
		}

		if err := step.run(ctx); err != nil {
			log.Error().Err(err).Str("resource", step.resource).Msg("pull aborted")
			metrics.SyncCycles.WithLabelValues("pull", "error").Inc()
			return false
		}
	}

	metrics.SyncCycles.WithLabelValues("pull", "success").Inc()
	return true
}

func scopeMatches(scopes []Scope, scope Scope) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// decodeEach decodes every raw record into R, skipping records that fail
// and counting them for the given resource.
func decodeEach[R any](resource string, raws []json.RawMessage) []R {
	records := make([]R, 0, len(raws))
	for _, raw := range raws {
		var record R
		if err := json.Unmarshal(raw, &record); err != nil {
			log.Warn().Err(err).Str("resource", resource).Msg("skipping malformed record")
			metrics.SkippedRecords.WithLabelValues(resource).Inc()
			continue
		}
		records = append(records, record)
	}

	metrics.PulledRecords.WithLabelValues(resource).Add(float64(len(records)))
	return records
}

func (o *Orchestrator) pullTags(ctx context.Context) error {
	raws, err := o.gateway.ListTags(ctx)
	if err != nil {
		return err
	}

	records := decodeEach[gateway.TagRecord]("tags", raws)
	tags := make([]models.Tag, 0, len(records))
	for _, r := range records {
		tags = append(tags, models.Tag{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Color:       r.Color,
		})
	}

	return store.UpsertTags(tags)
}

func (o *Orchestrator) pullAccounts(ctx context.Context) error {
	raws, err := o.gateway.ListAccounts(ctx)
	if err != nil {
		return err
	}

	records := decodeEach[gateway.AccountRecord]("accounts", raws)
	accounts := make([]models.Account, 0, len(records))
	for _, r := range records {
		category := models.AccountCategory(r.Category)
		if !category.Valid() {
			log.Warn().Str("path", r.Path).Str("category", r.Category).Msg("skipping account with unknown category")
			metrics.SkippedRecords.WithLabelValues("accounts").Inc()
			continue
		}

		accounts = append(accounts, models.Account{
			Path:       r.Path,
			Name:       r.Name,
			Category:   category,
			Type:       r.Type,
			Currency:   r.Currency,
			ParentPath: r.ParentPath,
			Metadata:   convertMetadata(r.Metadata),
		})
	}

	return store.UpsertAccounts(accounts)
}

// convertMetadata maps the wire metadata onto the typed scalar union.
// Nested structures are dropped per key, the engine has no use for them.
func convertMetadata(raw map[string]any) models.Metadata {
	if len(raw) == 0 {
		return nil
	}

	metadata := make(models.Metadata, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			metadata[key] = models.Value{Kind: models.KindNull}
		case string:
			metadata[key] = models.StringValue(v)
		case float64:
			metadata[key] = models.NumberValue(v)
		case bool:
			metadata[key] = models.BoolValue(v)
		}
	}
	return metadata
}

func (o *Orchestrator) pullUnits(ctx context.Context) error {
	raws, err := o.gateway.ListUnits(ctx)
	if err != nil {
		return err
	}

	records := decodeEach[gateway.UnitRecord]("units", raws)
	units := make([]models.Unit, 0, len(records))
	for _, r := range records {
		units = append(units, models.Unit{
			Code:   r.Code,
			Name:   r.Name,
			Symbol: r.Symbol,
			Type:   r.Type,
		})
	}

	return store.UpsertUnits(units)
}

// pullTransactions pages through the remote ledger and imports it in small
// committed batches, so peak memory stays bounded and partial progress
// survives an interruption. Already-present transactions are detected by
// the store and skipped, which is what makes a resumed pull idempotent.
func (o *Orchestrator) pullTransactions(ctx context.Context) error {
	tagsByID, err := tagMap()
	if err != nil {
		return err
	}

	offset := 0
	for {
		page, err := o.gateway.ListTransactions(ctx, o.PageSize, offset)
		if err != nil {
			return err
		}

		records := decodeEach[gateway.TransactionRecord]("transactions", page.Items)

		batch := make([]models.Transaction, 0, o.BatchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}

			result, err := store.ImportTransactions(batch, tagsByID)
			if err != nil {
				return err
			}

			log.Debug().
				Int("inserted", result.Inserted).
				Int("skipped", result.Skipped).
				Msg("imported transaction batch")

			batch = batch[:0]
			return nil
		}

		for _, r := range records {
			transaction, ok := convertTransaction(r)
			if !ok {
				metrics.SkippedRecords.WithLabelValues("transactions").Inc()
				continue
			}

			batch = append(batch, transaction)
			if len(batch) == o.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}

		if len(page.Items) < o.PageSize {
			return nil
		}
		offset += o.PageSize
	}
}

// tagMap loads the tag set once per pull so posting tags resolve against a
// single map instead of one query per posting.
func tagMap() (map[string]models.Tag, error) {
	var tags []models.Tag
	if err := models.DB.Find(&tags).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}
	return byID, nil
}

func convertTransaction(r gateway.TransactionRecord) (models.Transaction, bool) {
	if !r.Date.Valid() {
		log.Warn().Str("id", r.ID.String()).Str("date", r.Date.String()).Msg("skipping transaction with invalid date")
		return models.Transaction{}, false
	}

	transaction := models.Transaction{
		Date:        r.Date,
		Description: r.Description,
		Note:        r.Note,
	}
	transaction.ID = r.ID

	for _, p := range r.Postings {
		tags := make([]models.Tag, 0, len(p.TagIDs))
		for _, id := range p.TagIDs {
			tags = append(tags, models.Tag{ID: id})
		}

		transaction.Postings = append(transaction.Postings, models.Posting{
			ID:          p.ID,
			AccountPath: p.AccountPath,
			Amount:      p.Amount,
			Quantity:    p.Quantity,
			UnitCode:    p.UnitCode,
			Tags:        tags,
		})
	}

	return transaction, true
}

func (o *Orchestrator) pullPrices(ctx context.Context) error {
	raws, err := o.gateway.ListPrices(ctx)
	if err != nil {
		return err
	}

	records := decodeEach[gateway.PriceRecord]("prices", raws)
	prices := make([]models.Price, 0, len(records))
	for _, r := range records {
		if !r.Date.Valid() {
			metrics.SkippedRecords.WithLabelValues("prices").Inc()
			continue
		}

		prices = append(prices, models.Price{
			UnitCode: r.UnitCode,
			Date:     r.Date,
			Price:    r.Price,
			Currency: r.Currency,
			Source:   r.Source,
		})
	}

	return store.UpsertPrices(prices)
}

// pullReports refreshes the point-in-time report snapshots. These have no
// merge semantics, the freshest copy simply replaces the stored one.
func (o *Orchestrator) pullReports(ctx context.Context) error {
	year := time.Now().In(time.UTC).Year()

	reports := []struct {
		name     string
		argument string
		fetch    func(context.Context) (json.RawMessage, error)
	}{
		{"portfolio", "", o.gateway.GetPortfolio},
		{"net-worth-history", "monthly", func(ctx context.Context) (json.RawMessage, error) {
			return o.gateway.GetNetWorthHistory(ctx, "monthly")
		}},
		{"tax-analysis", "", o.gateway.GetTaxAnalysis},
		{"capital-gains", strconv.Itoa(year), func(ctx context.Context) (json.RawMessage, error) {
			return o.gateway.GetCapitalGains(ctx, year)
		}},
		{"cash-flow", "monthly", func(ctx context.Context) (json.RawMessage, error) {
			return o.gateway.GetCashFlow(ctx, "monthly")
		}},
	}

	for _, report := range reports {
		payload, err := report.fetch(ctx)
		if err != nil {
			return err
		}

		if err := store.SaveReport(report.name, report.argument, payload); err != nil {
			return err
		}
	}

	return nil
}
