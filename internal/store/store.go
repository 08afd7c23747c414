// Package store is the mutation surface of the local ledger.
//
// All writes go through this package. Every logical unit (an entity write
// with its queue item, one pull batch, one queue-item consumption) runs in a
// single database transaction, so a crash can never leave the write queue
// and the entity tables inconsistent.
package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"gorm.io/gorm"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/queue"
)

// Operation types for queued local writes.
const (
	OpCreateTransaction = "create_transaction"
	OpDeleteTransaction = "delete_transaction"
	OpUpsertAccount     = "upsert_account"
	OpUpsertTag         = "upsert_tag"
	OpUpsertUnit        = "upsert_unit"
)

// mu serializes mutations. The SQLite pool is already limited to one
// connection, but the mutex additionally keeps multi-statement units from
// interleaving at the gorm level.
var mu sync.Mutex

// CreateTransaction validates and stores a locally-authored transaction and
// queues it for delivery in the same database transaction.
func CreateTransaction(t *models.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	t.Dirty = true

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}

		return enqueue(tx, OpCreateTransaction, t.ID.String(), "/transactions", http.MethodPost, t)
	})
}

// DeleteTransaction soft-deletes a transaction and queues the deletion.
func DeleteTransaction(t *models.Transaction) error {
	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(t).Select("Deleted", "Dirty").Updates(models.Transaction{Deleted: true, Dirty: true}).Error
		if err != nil {
			return err
		}

		endpoint := fmt.Sprintf("/transactions/%s", t.ID)
		return enqueue(tx, OpDeleteTransaction, t.ID.String(), endpoint, http.MethodDelete, nil)
	})
}

// SaveAccount stores a local account edit and queues it for delivery.
func SaveAccount(a *models.Account) error {
	a.Dirty = true

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(a).Error; err != nil {
			return err
		}

		return enqueue(tx, OpUpsertAccount, a.Path, "/accounts", http.MethodPut, a)
	})
}

// SaveTag stores a local tag edit and queues it for delivery.
func SaveTag(t *models.Tag) error {
	t.Dirty = true

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}

		return enqueue(tx, OpUpsertTag, t.ID, "/tags", http.MethodPut, t)
	})
}

// SaveUnit stores a local unit edit and queues it for delivery.
func SaveUnit(u *models.Unit) error {
	u.Dirty = true

	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}

		return enqueue(tx, OpUpsertUnit, u.Code, "/units", http.MethodPut, u)
	})
}

func enqueue(tx *gorm.DB, operation, key, endpoint, method string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	return queue.Enqueue(tx, &models.SyncQueueItem{
		OperationType: operation,
		EntityKey:     key,
		Endpoint:      endpoint,
		Method:        method,
		Payload:       raw,
	})
}

// AcknowledgeDelivery removes a delivered queue item and clears the dirty
// flag of the entity it carried, in one database transaction. Once the flag
// is cleared the entity is owned by the server and pulls will no longer be
// blocked by it.
func AcknowledgeDelivery(item *models.SyncQueueItem) error {
	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := queue.RecordResult(tx, item, true); err != nil {
			return err
		}

		return markClean(tx, item)
	})
}

// RecordDeliveryFailure advances the retry state of a queue item.
func RecordDeliveryFailure(item *models.SyncQueueItem) error {
	mu.Lock()
	defer mu.Unlock()

	return queue.RecordResult(models.DB, item, false)
}

func markClean(tx *gorm.DB, item *models.SyncQueueItem) error {
	switch item.OperationType {
	case OpCreateTransaction, OpDeleteTransaction:
		return tx.Model(&models.Transaction{}).
			Where("id = ?", item.EntityKey).
			Update("dirty", false).Error
	case OpUpsertAccount:
		return tx.Model(&models.Account{}).
			Where("path = ?", item.EntityKey).
			Update("dirty", false).Error
	case OpUpsertTag:
		return tx.Model(&models.Tag{}).
			Where("id = ?", item.EntityKey).
			Update("dirty", false).Error
	case OpUpsertUnit:
		return tx.Model(&models.Unit{}).
			Where("code = ?", item.EntityKey).
			Update("dirty", false).Error
	}

	// Unknown operation types only consume the queue item
	return nil
}

// ClearQueue drops all queued operations. Destructive, debug only.
func ClearQueue() error {
	mu.Lock()
	defer mu.Unlock()

	return queue.Clear(models.DB)
}

// ClearAllLocalData deletes every entity and the write queue. Destructive,
// debug only: unsynced local work is lost.
func ClearAllLocalData() error {
	mu.Lock()
	defer mu.Unlock()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		// Join table first, then owners
		resources := []string{"posting_tags"}
		for _, table := range resources {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
				return err
			}
		}

		for _, model := range []any{
			&models.Posting{},
			&models.Transaction{},
			&models.Price{},
			&models.Unit{},
			&models.Tag{},
			&models.Account{},
			&models.Report{},
			&models.SyncQueueItem{},
		} {
			if err := tx.Where("true").Delete(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
