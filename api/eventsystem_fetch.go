package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) EventSystemList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	systems, err := a.Deps.Events.List(userID)
	if err != nil {
		respondErr(c, requestID, err, "Failed to list event systems")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"eventSystems": systems,
	})
}

func (a *API) EventSystemFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	es, err := a.Deps.Events.Get(userID, c.Param("id"))
	if err != nil {
		respondErr(c, requestID, err, "Failed to fetch event system")
		return
	}

	c.JSON(http.StatusOK, es)
}
