package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) UserLogout(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if err := a.Deps.Tokens.Revoke(userID); err != nil {
		respondErr(c, requestID, err, "Failed to revoke tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Logged out",
		"requestID": requestID,
	})
}
