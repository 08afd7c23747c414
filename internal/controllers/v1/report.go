package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/store"
)

type ReportQuery struct {
	Argument string `form:"argument"`
}

// @Summary		Get cached report
// @Description	Returns the last server-computed report snapshot, stale or not
// @Tags			Reports
// @Produce		json
// @Param			name		path		string	true	"Report name"
// @Param			argument	query		string	false	"Report argument, e.g. a fiscal year"
// @Success		200			{object}	models.Report
// @Failure		404			{object}	httpError
// @Router			/v1/reports/{name} [get]
func (co Controller) GetReport(c *gin.Context) {
	var query ReportQuery
	if err := c.BindQuery(&query); err != nil {
		return
	}

	report, err := store.Report(c.Param("name"), query.Argument)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
