package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
)

// @Summary		List tags
// @Tags			Tags
// @Produce		json
// @Success		200	{array}		models.Tag
// @Failure		500	{object}	httpError
// @Router			/v1/tags [get]
func (co Controller) GetTags(c *gin.Context) {
	var tags []models.Tag
	if err := models.DB.Order("name ASC").Find(&tags).Error; err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, tags)
}

// @Summary		Upsert tag
// @Description	Creates or updates a tag and queues it for delivery to the server
// @Tags			Tags
// @Accept			json
// @Produce		json
// @Success		200	{object}	models.Tag
// @Failure		400	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/tags [put]
func (co Controller) UpsertTag(c *gin.Context) {
	var tag models.Tag
	if err := c.ShouldBindJSON(&tag); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	if err := store.SaveTag(&tag); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, tag)
}
