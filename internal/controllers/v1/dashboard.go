package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/analytics"
	"github.com/sampattitrack/engine/internal/types"
)

// DateRange is the from/until query pair shared by the dashboard reads.
// Both bounds are inclusive ISO dates and both are optional.
type DateRange struct {
	From  string `form:"from"`
	Until string `form:"until"`
}

func (r DateRange) parse() (from, until types.Date, err error) {
	if r.From != "" {
		from, err = types.ParseDate(r.From)
		if err != nil {
			return
		}
	}

	if r.Until != "" {
		until, err = types.ParseDate(r.Until)
	}
	return
}

// @Summary		Dashboard summary
// @Description	Returns income/expense totals, net worth and cash-flow KPIs for a date range
// @Tags			Dashboard
// @Produce		json
// @Success		200	{object}	analytics.Summary
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			from	query	string	false	"Start of the range, YYYY-MM-DD, inclusive"
// @Param			until	query	string	false	"End of the range, YYYY-MM-DD, inclusive"
// @Router			/v1/summary [get]
func (co Controller) GetSummary(c *gin.Context) {
	var query DateRange
	if err := c.BindQuery(&query); err != nil {
		return
	}

	from, until, err := query.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	summary, err := co.Cache.Summary(from, until)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary		Net worth history
// @Description	Returns a baseline point plus one net worth point per calendar month in the range
// @Tags			Dashboard
// @Produce		json
// @Success		200	{array}		analytics.NetWorthPoint
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/net-worth-history [get]
func (co Controller) GetNetWorthHistory(c *gin.Context) {
	var query DateRange
	if err := c.BindQuery(&query); err != nil {
		return
	}

	from, until, err := query.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	points, err := co.Cache.NetWorthHistory(from, until)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, points)
}

// @Summary		Tag breakdown
// @Description	Returns expense totals per tag, largest first, with a rollup bucket after the top nine
// @Tags			Dashboard
// @Produce		json
// @Success		200	{array}		analytics.TagShare
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/tags/breakdown [get]
func (co Controller) GetTagBreakdown(c *gin.Context) {
	var query DateRange
	if err := c.BindQuery(&query); err != nil {
		return
	}

	from, until, err := query.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	shares, err := analytics.TagBreakdown(from, until)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, shares)
}

// @Summary		Invalidate analytics cache
// @Description	Drops the cached dashboard projection so the next read recomputes from the local store
// @Tags			Dashboard
// @Success		204
// @Router			/v1/cache/invalidate [post]
func (co Controller) InvalidateCache(c *gin.Context) {
	co.Cache.Invalidate()
	c.Status(http.StatusNoContent)
}
