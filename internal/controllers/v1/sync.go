package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/queue"
	"github.com/sampattitrack/engine/internal/sync"
)

type SyncScopeQuery struct {
	Scope string `form:"scope"`
}

type SyncStatusResponse struct {
	sync.Status
	QueueDepth int64 `json:"queueDepth"`
}

// @Summary		Trigger full sync
// @Description	Pushes queued local writes and then pulls all remote resources. Returns immediately; progress is observable via the status endpoint.
// @Tags			Sync
// @Success		202
// @Router			/v1/sync [post]
func (co Controller) TriggerFullSync(c *gin.Context) {
	go co.Sync.PerformFullSync(context.Background())
	c.Status(http.StatusAccepted)
}

// @Summary		Trigger push
// @Description	Drains the offline write queue without pulling
// @Tags			Sync
// @Success		202
// @Router			/v1/sync/push [post]
func (co Controller) TriggerPush(c *gin.Context) {
	go co.Sync.PushOnly(context.Background())
	c.Status(http.StatusAccepted)
}

// @Summary		Trigger pull
// @Description	Pulls remote resources for the given scope. Queued local writes are delivered first.
// @Tags			Sync
// @Produce		json
// @Param			scope	query	string	false	"all, transactions or reports"	default(all)
// @Success		202
// @Failure		400	{object}	httpError
// @Router			/v1/sync/pull [post]
func (co Controller) TriggerPull(c *gin.Context) {
	var query SyncScopeQuery
	if err := c.BindQuery(&query); err != nil {
		return
	}

	scope := sync.Scope(query.Scope)
	if query.Scope == "" {
		scope = sync.ScopeAll
	}

	switch scope {
	case sync.ScopeAll, sync.ScopeTransactions, sync.ScopeReports:
	default:
		c.JSON(http.StatusBadRequest, httpError{Error: errInvalidSyncScope.Error()})
		return
	}

	go co.Sync.PullOnly(context.Background(), scope)
	c.Status(http.StatusAccepted)
}

// @Summary		Sync status
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	SyncStatusResponse
// @Failure		500	{object}	httpError
// @Router			/v1/sync/status [get]
func (co Controller) GetSyncStatus(c *gin.Context) {
	depth, err := queue.Depth(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SyncStatusResponse{
		Status:     co.Sync.Status(),
		QueueDepth: depth,
	})
}
