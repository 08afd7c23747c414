// Package sync drives the push-then-pull reconciliation between the local
// store and the remote authoritative server.
package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sampattitrack/engine/internal/analytics"
	"github.com/sampattitrack/engine/internal/gateway"
)

// AuthProvider reports authentication state. De-authentication on a
// rejected credential is a global side effect owned by the surrounding app,
// the orchestrator only triggers it.
type AuthProvider interface {
	Authenticated() bool
	HandleUnauthorized()
}

// ConnectivityProvider reports the single online/offline boolean the
// orchestrator consumes. Reachability detection itself is out of scope.
type ConnectivityProvider interface {
	Online() bool
}

// Scope narrows a pull to a subset of resources.
type Scope string

const (
	ScopeAll          Scope = "all"
	ScopeTransactions Scope = "transactions"
	ScopeReports      Scope = "reports"
)

// Status is the UI-facing sync state. It is published atomically so
// consumers never observe torn reads.
type Status struct {
	Syncing    bool       `json:"syncing"`
	Online     bool       `json:"online"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// Orchestrator owns the sync cycle. Exactly one cycle (full sync, push-only
// or pull-only) runs at a time; triggers that fire while one is in flight
// are silent no-ops, not queued retries.
type Orchestrator struct {
	gateway      gateway.Gateway
	auth         AuthProvider
	connectivity ConnectivityProvider
	cache        *analytics.Cache

	// Interval of the periodic trigger; zero means manual-only.
	Interval time.Duration

	// PageSize is the transaction pull page size, BatchSize how many
	// transactions are committed per import batch.
	PageSize  int
	BatchSize int

	inFlight atomic.Bool

	statusMu sync.Mutex
	status   Status
}

// New returns an Orchestrator with the default page and batch sizes.
func New(gw gateway.Gateway, auth AuthProvider, connectivity ConnectivityProvider, cache *analytics.Cache) *Orchestrator {
	return &Orchestrator{
		gateway:      gw,
		auth:         auth,
		connectivity: connectivity,
		cache:        cache,
		PageSize:     100,
		BatchSize:    10,
	}
}

// PerformFullSync drains the write queue and then pulls all remote
// resources. It never returns an error: push and pull failures are isolated
// from each other, logged, and counted; the worst observable effect is a
// stale last-sync time.
func (o *Orchestrator) PerformFullSync(ctx context.Context) {
	if !o.begin("full") {
		return
	}
	defer o.end()

	pushOK := o.push(ctx)
	pullOK := o.pull(ctx, ScopeAll)

	if pushOK && pullOK {
		o.markSynced()
	}

	o.cache.Invalidate()
}

// PushOnly drains the write queue without pulling.
func (o *Orchestrator) PushOnly(ctx context.Context) {
	if !o.begin("push") {
		return
	}
	defer o.end()

	o.push(ctx)
}

// PullOnly pulls the given scope. The write queue is drained first so that
// local writes reach the server before remote reads overwrite what the
// user sees.
func (o *Orchestrator) PullOnly(ctx context.Context, scope Scope) {
	if !o.begin("pull") {
		return
	}
	defer o.end()

	o.push(ctx)
	if o.pull(ctx, scope) {
		o.markSynced()
	}

	o.cache.Invalidate()
}

// Run blocks and triggers a full sync every Interval until the context is
// canceled. With a zero Interval it returns immediately and syncs happen
// on manual triggers only.
func (o *Orchestrator) Run(ctx context.Context) {
	if o.Interval == 0 {
		log.Info().Msg("periodic sync disabled, waiting for manual triggers")
		return
	}

	ticker := time.NewTicker(o.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.PerformFullSync(ctx)
		}
	}
}

// OnConnectivityChange is the reconnect trigger. A transition to online
// starts a full sync; going offline only updates the published status.
func (o *Orchestrator) OnConnectivityChange(ctx context.Context, online bool) {
	o.setOnline(online)

	if online {
		log.Debug().Msg("connectivity restored, starting sync")
		o.PerformFullSync(ctx)
	}
}

// OnAuthenticated is the initial-login trigger.
func (o *Orchestrator) OnAuthenticated(ctx context.Context) {
	o.PerformFullSync(ctx)
}

// Status returns the current UI-facing sync state.
func (o *Orchestrator) Status() Status {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	return o.status
}

// begin acquires the single-flight guard and checks the preconditions
// every cycle shares.
func (o *Orchestrator) begin(flow string) bool {
	if !o.auth.Authenticated() {
		log.Debug().Str("flow", flow).Msg("skipping sync, not authenticated")
		return false
	}

	if !o.connectivity.Online() {
		o.setOnline(false)
		log.Debug().Str("flow", flow).Msg("skipping sync, offline")
		return false
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		log.Debug().Str("flow", flow).Msg("sync already in flight")
		return false
	}

	o.statusMu.Lock()
	o.status.Syncing = true
	o.status.Online = true
	o.statusMu.Unlock()

	return true
}

func (o *Orchestrator) end() {
	o.statusMu.Lock()
	o.status.Syncing = false
	o.statusMu.Unlock()

	o.inFlight.Store(false)
}

func (o *Orchestrator) markSynced() {
	now := time.Now().In(time.UTC)

	o.statusMu.Lock()
	o.status.LastSyncAt = &now
	o.statusMu.Unlock()
}

func (o *Orchestrator) setOnline(online bool) {
	o.statusMu.Lock()
	o.status.Online = online
	o.statusMu.Unlock()
}
