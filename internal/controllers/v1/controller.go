// Package v1 implements the HTTP surface consumers of the engine read
// from. Screens talk to these endpoints and to nothing else; the remote
// server is only ever reached through the sync engine.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/analytics"
	"github.com/sampattitrack/engine/internal/sync"
)

// Controller carries the engine components the handlers work with.
type Controller struct {
	Sync  *sync.Orchestrator
	Cache *analytics.Cache
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is
// passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	// Dashboard reads
	{
		r.GET("/summary", co.GetSummary)
		r.GET("/net-worth-history", co.GetNetWorthHistory)
		r.GET("/tags/breakdown", co.GetTagBreakdown)
		r.POST("/cache/invalidate", co.InvalidateCache)
	}

	// Entities
	{
		r.GET("/accounts", co.GetAccounts)
		r.PUT("/accounts", co.UpsertAccount)
		r.POST("/accounts/xirr", co.ComputeAccountXIRR)

		r.GET("/transactions", co.GetTransactions)
		r.POST("/transactions", co.CreateTransaction)
		r.DELETE("/transactions/:id", co.DeleteTransaction)

		r.GET("/tags", co.GetTags)
		r.PUT("/tags", co.UpsertTag)

		r.GET("/units", co.GetUnits)
		r.PUT("/units", co.UpsertUnit)

		r.GET("/reports/:name", co.GetReport)
	}

	// Sync triggers and state
	{
		r.POST("/sync", co.TriggerFullSync)
		r.POST("/sync/push", co.TriggerPush)
		r.POST("/sync/pull", co.TriggerPull)
		r.GET("/sync/status", co.GetSyncStatus)
	}

	// Debug escape hatches
	{
		r.GET("/queue", co.GetQueue)
		r.DELETE("/queue", co.ClearQueue)
		r.DELETE("/data", co.ClearAllLocalData)
	}
}
