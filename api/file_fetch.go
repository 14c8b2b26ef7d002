package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	refs, err := a.Deps.Files.List(userID, c.Param("id"))
	if err != nil {
		respondErr(c, requestID, err, "Failed to list files")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": refs,
	})
}

func (a *API) FileFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	ref, err := a.Deps.Files.Get(userID, c.Param("id"), c.Param("fileID"))
	if err != nil {
		respondErr(c, requestID, err, "Failed to fetch file")
		return
	}

	c.JSON(http.StatusOK, ref)
}
