package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type fileSelectBody struct {
	Selected *bool `json:"selected"`
}

// FileSelect toggles the selection flag of a file. Selecting an already
// selected file (or deselecting an unselected one) fails, matching the
// explicit toggle semantics of the flag.
func (a *API) FileSelect(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data fileSelectBody
	if err := c.BindJSON(&data); err != nil || data.Selected == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "A selected field is required",
			"requestID": requestID,
		})
		return
	}

	ref, err := a.Deps.Files.SetSelected(userID, c.Param("id"), c.Param("fileID"), *data.Selected)
	if err != nil {
		respondErr(c, requestID, err, "Failed to update file selection")
		return
	}

	c.JSON(http.StatusOK, ref)
}
