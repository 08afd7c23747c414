package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/queue"
	"github.com/sampattitrack/engine/internal/store"
)

// @Summary		Inspect write queue
// @Description	Returns all queued, retrying and failed write operations in delivery order
// @Tags			Queue
// @Produce		json
// @Success		200	{array}		models.SyncQueueItem
// @Failure		500	{object}	httpError
// @Router			/v1/queue [get]
func (co Controller) GetQueue(c *gin.Context) {
	items, err := queue.List(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary		Clear write queue
// @Description	Permanently discards all queued write operations, including failed ones. Requires the confirmation parameter to be set to "yes-please-delete-everything".
// @Tags			Queue
// @Param			confirm	query	string	false	"Confirmation"
// @Success		204
// @Failure		400	{object}	httpError
// @Router			/v1/queue [delete]
func (co Controller) ClearQueue(c *gin.Context) {
	if c.Query("confirm") != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{Error: errCleanupConfirmation.Error()})
		return
	}

	if err := store.ClearQueue(); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Delete all local data
// @Description	Permanently deletes every locally stored record, including unsynced writes. Requires the confirmation parameter to be set to "yes-please-delete-everything".
// @Tags			Queue
// @Param			confirm	query	string	false	"Confirmation"
// @Success		204
// @Failure		400	{object}	httpError
// @Router			/v1/data [delete]
func (co Controller) ClearAllLocalData(c *gin.Context) {
	if c.Query("confirm") != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{Error: errCleanupConfirmation.Error()})
		return
	}

	if err := store.ClearAllLocalData(); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	co.Cache.Invalidate()
	c.Status(http.StatusNoContent)
}
