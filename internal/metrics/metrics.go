// Package metrics holds the Prometheus collectors for the sync engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var collectors = []prometheus.Collector{
	SyncCycles,
	PushResults,
	PulledRecords,
	SkippedRecords,
	QueueDepth,
}

// Register registers all collectors with the default registry.
func Register() error {
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("could not register %s with Prometheus", c)
		}
	}

	return nil
}

// Unregister unregisters all collectors.
//
// This is needed for tests that register more than once.
func Unregister() {
	for _, c := range collectors {
		prometheus.Unregister(c)
	}
}

// SyncCycles counts sync cycles by outcome.
var SyncCycles = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sampatti_sync_cycles_total",
		Help: "How many sync cycles ran, partitioned by flow and outcome.",
	},
	[]string{"flow", "outcome"},
)

// PushResults counts delivery attempts of queued writes.
var PushResults = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sampatti_sync_push_results_total",
		Help: "Delivery attempts for queued local writes, partitioned by result.",
	},
	[]string{"result"},
)

// PulledRecords counts records merged from the server per resource.
var PulledRecords = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sampatti_sync_records_pulled_total",
		Help: "Records received from the server during pulls, partitioned by resource.",
	},
	[]string{"resource"},
)

// SkippedRecords counts pulled records that could not be deserialized.
// The records themselves are dropped silently, this counter makes the
// behavior observable.
var SkippedRecords = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sampatti_sync_records_skipped_total",
		Help: "Pulled records dropped because they could not be decoded, partitioned by resource.",
	},
	[]string{"resource"},
)

// QueueDepth tracks the number of queue items awaiting delivery.
var QueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "sampatti_sync_queue_depth",
		Help: "Number of write queue items awaiting delivery.",
	},
)
