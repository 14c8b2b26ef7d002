package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evsys/event-api/internal/lifecycle"
	"evsys/event-api/internal/model"
)

func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open uploaded file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer f.Close()

	fileType := model.FileType(c.PostForm("file_type"))
	if fileType != "" && fileType != model.FileTypeEvent && fileType != model.FileTypePrediction {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file type",
			"requestID": requestID,
		})
		return
	}

	ref, err := a.Deps.Files.Upload(c.Request.Context(), userID, lifecycle.UploadInput{
		EventSystemID: c.Param("id"),
		FileName:      fh.Filename,
		Body:          f,
		Size:          fh.Size,
		ContentType:   fh.Header.Get("Content-Type"),
		FileType:      fileType,
	})
	if err != nil {
		respondErr(c, requestID, err, "Failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, ref)
}
