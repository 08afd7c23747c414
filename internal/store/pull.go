package store

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sampattitrack/engine/internal/models"
)

// UpsertTags merges remote tags into the store, last write wins per ID.
// Remote state is authoritative, so merged rows are clean.
func UpsertTags(tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		for i := range tags {
			tag := &tags[i]
			tag.Dirty = false

			var existing models.Tag
			err := tx.First(&existing, "id = ?", tag.ID).Error
			switch {
			case err == nil:
				tag.CreatedAt = existing.CreatedAt
			case errors.Is(err, models.ErrResourceNotFound):
			default:
				return err
			}

			if err := tx.Save(tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertUnits merges remote units into the store, last write wins per code.
func UpsertUnits(units []models.Unit) error {
	if len(units) == 0 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		for i := range units {
			unit := &units[i]
			unit.Dirty = false

			var existing models.Unit
			err := tx.First(&existing, "code = ?", unit.Code).Error
			switch {
			case err == nil:
				unit.CreatedAt = existing.CreatedAt
			case errors.Is(err, models.ErrResourceNotFound):
			default:
				return err
			}

			if err := tx.Save(unit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertAccounts merges remote accounts into the store by path.
//
// The remote payload has no notion of the device-local bookkeeping fields,
// so the existing dirty flag and the cached XIRR survive the upsert. An
// account that only exists remotely is inserted clean.
func UpsertAccounts(accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		for i := range accounts {
			account := &accounts[i]

			var existing models.Account
			err := tx.First(&existing, "path = ?", account.Path).Error
			switch {
			case err == nil:
				account.Dirty = existing.Dirty
				account.CachedXIRR = existing.CachedXIRR
				account.XIRRComputedAt = existing.XIRRComputedAt
				account.CreatedAt = existing.CreatedAt
			case errors.Is(err, models.ErrResourceNotFound):
				account.Dirty = false
			default:
				return err
			}

			if err := tx.Save(account).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ImportResult describes the outcome of one transaction import batch.
type ImportResult struct {
	Inserted int
	Skipped  int // already present, left untouched
}

// ImportTransactions merges one batch of remote transactions into the store
// in a single database transaction, so partial pull progress stays durable.
//
// The merge rule that keeps the two replicas consistent without server-side
// conflict handling:
//
//   - a transaction that exists locally and is clean is skipped entirely,
//     postings included, because ledger transactions are immutable once
//     acknowledged
//   - a transaction that exists locally and is dirty is left untouched, the
//     local edit wins until the queue has delivered it
//   - an unknown transaction is inserted with its postings, resolving
//     posting tags against the tag set passed by the caller (built once per
//     batch) so no dangling tag references are created
func ImportTransactions(batch []models.Transaction, tagsByID map[string]models.Tag) (ImportResult, error) {
	var result ImportResult

	mu.Lock()
	defer mu.Unlock()

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		for i := range batch {
			incoming := &batch[i]

			var existing models.Transaction
			err := tx.First(&existing, "id = ?", incoming.ID).Error
			if err == nil {
				result.Skipped++
				if existing.Dirty {
					continue
				}

				// No-op unless something re-marked it locally
				err = tx.Model(&existing).Update("dirty", false).Error
				if err != nil {
					return err
				}
				continue
			}

			if !errors.Is(err, models.ErrResourceNotFound) {
				return err
			}

			incoming.Dirty = false
			for p := range incoming.Postings {
				incoming.Postings[p].Position = p
				incoming.Postings[p].Tags = resolveTags(incoming.Postings[p].Tags, tagsByID)
			}

			if err := tx.Create(incoming).Error; err != nil {
				return err
			}
			result.Inserted++
		}

		return nil
	})

	return result, err
}

// resolveTags replaces tag stubs with the full rows from the per-batch map.
// Unknown tag IDs are dropped rather than inserted as empty tags.
func resolveTags(stubs []models.Tag, tagsByID map[string]models.Tag) []models.Tag {
	if len(stubs) == 0 {
		return nil
	}

	resolved := make([]models.Tag, 0, len(stubs))
	for _, stub := range stubs {
		if tag, ok := tagsByID[stub.ID]; ok {
			resolved = append(resolved, tag)
		}
	}
	return resolved
}

// UpsertPrices overwrites prices by their (unit, date) key.
func UpsertPrices(prices []models.Price) error {
	if len(prices) == 0 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "unit_code"}, {Name: "date"}},
			UpdateAll: true,
		}).Create(&prices).Error
	})
}

// SaveReport stores a point-in-time report snapshot, overwriting any
// previous snapshot for the same name and argument.
func SaveReport(name, argument string, payload json.RawMessage) error {
	mu.Lock()
	defer mu.Unlock()

	return models.DB.Save(&models.Report{
		Name:      name,
		Argument:  argument,
		Payload:   payload,
		FetchedAt: time.Now().In(time.UTC),
	}).Error
}
