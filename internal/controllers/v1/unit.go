package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
)

// @Summary		List units
// @Tags			Units
// @Produce		json
// @Success		200	{array}		models.Unit
// @Failure		500	{object}	httpError
// @Router			/v1/units [get]
func (co Controller) GetUnits(c *gin.Context) {
	var units []models.Unit
	if err := models.DB.Order("code ASC").Find(&units).Error; err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, units)
}

// @Summary		Upsert unit
// @Description	Creates or updates a traded unit and queues it for delivery to the server
// @Tags			Units
// @Accept			json
// @Produce		json
// @Success		200	{object}	models.Unit
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/units [put]
func (co Controller) UpsertUnit(c *gin.Context) {
	var unit models.Unit
	if err := c.ShouldBindJSON(&unit); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	if err := store.SaveUnit(&unit); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, unit)
}
