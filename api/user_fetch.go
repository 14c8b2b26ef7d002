package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evsys/event-api/internal/model"
)

// UserFetch returns the caller's profile and the event systems they hold a
// role on. This is used when initially loading the dashboard
func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User

	err := a.Deps.DB.
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	systems, err := a.Deps.Events.List(userID)
	if err != nil {
		respondErr(c, requestID, err, "Failed to list event systems")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"eventSystems": systems,
	})
}
