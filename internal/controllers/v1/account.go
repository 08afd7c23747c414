package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/analytics"
	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
)

type AccountQuery struct {
	Path string `form:"path"`
}

// @Summary		List accounts
// @Description	Returns accounts, optionally filtered by a glob pattern on the path
// @Tags			Accounts
// @Produce		json
// @Param			path	query		string	false	"Glob pattern, e.g. Assets:*"
// @Success		200		{array}		models.Account
// @Failure		500		{object}	httpError
// @Router			/v1/accounts [get]
func (co Controller) GetAccounts(c *gin.Context) {
	var query AccountQuery
	if err := c.BindQuery(&query); err != nil {
		return
	}

	accounts, err := store.Accounts(query.Path)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// @Summary		Upsert account
// @Description	Creates or updates an account and queues it for delivery to the server
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200	{object}	models.Account
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/accounts [put]
func (co Controller) UpsertAccount(c *gin.Context) {
	var account models.Account
	if err := c.ShouldBindJSON(&account); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	if err := store.SaveAccount(&account); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	co.Cache.Invalidate()
	c.JSON(http.StatusOK, account)
}

// @Summary		Compute account XIRR
// @Description	Computes the money-weighted annualized return for an investment account
// @Tags			Accounts
// @Produce		json
// @Param			path	query		string	true	"Account path"
// @Success		200		{object}	models.Account
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Router			/v1/accounts/xirr [post]
func (co Controller) ComputeAccountXIRR(c *gin.Context) {
	var query AccountQuery
	if err := c.BindQuery(&query); err != nil {
		return
	}

	if query.Path == "" {
		c.JSON(http.StatusBadRequest, httpError{Error: errAccountPathNotSet.Error()})
		return
	}

	if _, err := store.Account(query.Path); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	if _, err := analytics.ComputeAccountXIRR(query.Path); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	account, err := store.Account(query.Path)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}
