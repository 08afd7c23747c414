package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// QueueStatus is the delivery state of a queued write operation.
type QueueStatus string

const (
	QueueStatusPending  QueueStatus = "pending"
	QueueStatusRetrying QueueStatus = "retrying"
	QueueStatusFailed   QueueStatus = "failed" // terminal, kept for inspection
)

// RetryCeiling is the number of failed delivery attempts after which a queue
// item becomes terminal.
const RetryCeiling = 10

// SyncQueueItem is one locally-authored mutation waiting to be delivered to
// the server. Items are created in the same database transaction as the
// local write they describe, so queueing and the write are atomic.
type SyncQueueItem struct {
	DefaultModel
	OperationType string          `json:"operationType"` // create_transaction, update_account, ...
	EntityKey     string          `json:"entityKey"`     // UUID, account path, tag ID or unit code
	Endpoint      string          `json:"endpoint"`
	Method        string          `json:"method"`
	Payload       json.RawMessage `json:"payload"`
	LastAttemptAt *time.Time      `json:"lastAttemptAt,omitempty"`
	RetryCount    int             `json:"retryCount"`
	Status        QueueStatus     `json:"status"`
}

func (i *SyncQueueItem) BeforeCreate(tx *gorm.DB) error {
	_ = i.DefaultModel.BeforeCreate(tx)

	if i.Status == "" {
		i.Status = QueueStatusPending
	}
	return nil
}
