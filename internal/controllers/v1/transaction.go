package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
)

// @Summary		List transactions
// @Description	Returns all live transactions with postings and tags for a date range
// @Tags			Transactions
// @Produce		json
// @Success		200	{array}		models.Transaction
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/transactions [get]
func (co Controller) GetTransactions(c *gin.Context) {
	var query DateRange
	if err := c.BindQuery(&query); err != nil {
		return
	}

	from, until, err := query.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	transactions, err := store.Transactions(from, until)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// @Summary		Create transaction
// @Description	Stores a locally-authored transaction and queues it for delivery to the server
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201	{object}	models.Transaction
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/transactions [post]
func (co Controller) CreateTransaction(c *gin.Context) {
	var transaction models.Transaction
	if err := c.ShouldBindJSON(&transaction); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	if err := store.CreateTransaction(&transaction); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	co.Cache.Invalidate()
	c.JSON(http.StatusCreated, transaction)
}

// @Summary		Delete transaction
// @Description	Soft-deletes a transaction and queues the deletion for delivery
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/transactions/{id} [delete]
func (co Controller) DeleteTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	var transaction models.Transaction
	if err := models.DB.First(&transaction, "id = ?", id).Error; err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	if err := store.DeleteTransaction(&transaction); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	co.Cache.Invalidate()
	c.Status(http.StatusNoContent)
}
