// Package queue implements the durable FIFO of pending outbound operations.
//
// Items live in the same SQLite database as the entities they describe so
// that a local write and its queue item commit atomically.
package queue

import (
	"time"

	"gorm.io/gorm"

	"github.com/sampattitrack/engine/internal/models"
)

const (
	backoffBase = 5 * time.Second
	backoffCap  = time.Hour
)

// BackoffDelay returns how long an item with the given retry count has to
// wait after its last attempt before it may be retried again. It grows
// exponentially and is capped so that long-lived failures still get an
// attempt every hour.
func BackoffDelay(retryCount int) time.Duration {
	delay := backoffBase
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= backoffCap {
			return backoffCap
		}
	}
	return delay
}

// Enqueue appends an operation to the queue.
//
// Callers that create the queue item together with a local entity write must
// pass the *gorm.DB of the surrounding transaction so both commit or roll
// back together.
func Enqueue(db *gorm.DB, item *models.SyncQueueItem) error {
	item.Status = models.QueueStatusPending
	item.RetryCount = 0
	return db.Create(item).Error
}

// NextBatch returns all items that are due for delivery at the given time,
// preserving insertion order.
//
// Items with terminal status and items still inside their backoff window are
// excluded. The backoff filter runs in memory: the window depends on the
// per-item retry count and the queue is small by construction.
func NextBatch(db *gorm.DB, now time.Time) ([]models.SyncQueueItem, error) {
	var candidates []models.SyncQueueItem

	err := db.
		Where("status IN ?", []models.QueueStatus{models.QueueStatusPending, models.QueueStatusRetrying}).
		Where("retry_count < ?", models.RetryCeiling).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	due := make([]models.SyncQueueItem, 0, len(candidates))
	for _, item := range candidates {
		if item.LastAttemptAt != nil && now.Before(item.LastAttemptAt.Add(BackoffDelay(item.RetryCount))) {
			continue
		}
		due = append(due, item)
	}

	return due, nil
}

// RecordResult applies the outcome of a delivery attempt.
//
// Success deletes the item. Failure advances the retry counter and moves the
// item to retrying, or to the terminal failed status once the ceiling is
// reached. Failed items are never attempted again but stay visible for
// operators.
func RecordResult(db *gorm.DB, item *models.SyncQueueItem, ok bool) error {
	if ok {
		return db.Delete(item).Error
	}

	now := time.Now().In(time.UTC)
	item.RetryCount++
	item.LastAttemptAt = &now

	item.Status = models.QueueStatusRetrying
	if item.RetryCount >= models.RetryCeiling {
		item.Status = models.QueueStatusFailed
	}

	return db.Model(item).
		Select("RetryCount", "LastAttemptAt", "Status").
		Updates(item).Error
}

// List returns all queue items, including terminal ones, oldest first.
func List(db *gorm.DB) ([]models.SyncQueueItem, error) {
	var items []models.SyncQueueItem
	err := db.Order("created_at ASC").Find(&items).Error
	return items, err
}

// Depth returns the number of items still awaiting delivery.
func Depth(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.SyncQueueItem{}).
		Where("status IN ?", []models.QueueStatus{models.QueueStatusPending, models.QueueStatusRetrying}).
		Count(&count).Error
	return count, err
}

// Clear removes all items, terminal or not. This is a destructive debugging
// escape hatch, not part of the normal delivery flow.
func Clear(db *gorm.DB) error {
	return db.Where("true").Delete(&models.SyncQueueItem{}).Error
}
