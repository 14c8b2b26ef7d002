package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type refreshBody struct {
	Refresh string `json:"refresh"`
}

func (a *API) UserRefresh(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data refreshBody
	if err := c.ShouldBind(&data); err != nil || data.Refresh == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Refresh token is required",
			"requestID": requestID,
		})
		return
	}

	pair, err := a.Deps.Tokens.Refresh(data.Refresh)
	if err != nil {
		respondErr(c, requestID, err, "Failed to refresh tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}
