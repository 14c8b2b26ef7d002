package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type fileRenameBody struct {
	Name string `json:"name"`
}

func (a *API) FileRename(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data fileRenameBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if strings.TrimSpace(data.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No new name provided",
			"requestID": requestID,
		})
		return
	}

	ref, err := a.Deps.Files.Rename(c.Request.Context(), userID, c.Param("id"), c.Param("fileID"), data.Name)
	if err != nil {
		respondErr(c, requestID, err, "Failed to rename file")
		return
	}

	c.JSON(http.StatusOK, ref)
}
