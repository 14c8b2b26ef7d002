package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type eventSystemCreateBody struct {
	Name string `json:"name"`
}

func (a *API) EventSystemCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data eventSystemCreateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	es, err := a.Deps.Events.Create(userID, data.Name)
	if err != nil {
		respondErr(c, requestID, err, "Failed to create event system")
		return
	}

	c.JSON(http.StatusCreated, es)
}
