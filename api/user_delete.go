package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evsys/event-api/internal/model"
)

// UserDelete soft deletes the account. The row and its permission history
// stay in place, but the user can no longer log in and their tracked
// session is revoked.
func (a *API) UserDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	err := a.Deps.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"is_deleted": true,
			"is_active":  false,
		}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to soft delete user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Deps.Tokens.Revoke(userID); err != nil {
		respondErr(c, requestID, err, "Failed to revoke tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Account deleted",
		"requestID": requestID,
	})
}
