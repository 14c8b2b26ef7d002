package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type eventSystemRenameBody struct {
	Name string `json:"name"`
}

func (a *API) EventSystemRename(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data eventSystemRenameBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	es, err := a.Deps.Events.Rename(userID, c.Param("id"), data.Name)
	if err != nil {
		respondErr(c, requestID, err, "Failed to rename event system")
		return
	}

	c.JSON(http.StatusOK, es)
}
