package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("fileID")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	err := a.Deps.Files.Delete(c.Request.Context(), userID, c.Param("id"), fileID)
	if err != nil {
		respondErr(c, requestID, err, "Failed to delete file")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "File deleted successfully",
		"requestID": requestID,
	})
}
