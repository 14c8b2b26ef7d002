package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evsys/event-api/internal/model"
)

type eventSystemStatusBody struct {
	Status model.EventStatus `json:"status"`
}

// EventSystemStatus flips an event system between Active and Inactive.
// Repeating the current status is an error, not a silent no-op.
func (a *API) EventSystemStatus(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data eventSystemStatusBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	es, err := a.Deps.Events.UpdateStatus(userID, c.Param("id"), data.Status)
	if err != nil {
		respondErr(c, requestID, err, "Failed to update event system status")
		return
	}

	c.JSON(http.StatusOK, es)
}
