package sync

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sampattitrack/engine/internal/gateway"
	"github.com/sampattitrack/engine/internal/metrics"
	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/queue"
	"github.com/sampattitrack/engine/internal/store"
)

// push delivers all due queue items in insertion order. It reports whether
// the drain ran to completion; individual delivery failures only advance
// the item's retry state and do not stop the drain. An unauthorized
// response does stop it and triggers the global de-auth side effect.
func (o *Orchestrator) push(ctx context.Context) bool {
	batch, err := queue.NextBatch(models.DB, time.Now().In(time.UTC))
	if err != nil {
		log.Error().Err(err).Msg("could not read write queue")
		metrics.SyncCycles.WithLabelValues("push", "error").Inc()
		return false
	}

	complete := true
	for i := range batch {
		item := &batch[i]

		err := o.gateway.Submit(ctx, item.Endpoint, item.Method, item.Payload)
		switch {
		case errors.Is(err, gateway.ErrUnauthorized):
			log.Warn().Str("operation", item.OperationType).Msg("server rejected credentials, de-authenticating")
			metrics.PushResults.WithLabelValues("unauthorized").Inc()
			o.auth.HandleUnauthorized()
			complete = false

		case err != nil:
			log.Warn().Err(err).
				Str("operation", item.OperationType).
				Int("retryCount", item.RetryCount).
				Msg("delivery failed")
			metrics.PushResults.WithLabelValues("failure").Inc()

			if err := store.RecordDeliveryFailure(item); err != nil {
				log.Error().Err(err).Msg("could not record delivery failure")
				complete = false
			}

		default:
			metrics.PushResults.WithLabelValues("success").Inc()

			if err := store.AcknowledgeDelivery(item); err != nil {
				log.Error().Err(err).Msg("could not acknowledge delivery")
				complete = false
			}
		}

		if errors.Is(err, gateway.ErrUnauthorized) {
			break
		}
	}

	if depth, err := queue.Depth(models.DB); err == nil {
		metrics.QueueDepth.Set(float64(depth))
	}

	outcome := "success"
	if !complete {
		outcome = "error"
	}
	metrics.SyncCycles.WithLabelValues("push", outcome).Inc()

	return complete
}
