package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evsys/event-api/internal/model"
)

type verifyBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (a *API) UserVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" || data.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email and code are required",
			"requestID": requestID,
		})
		return
	}

	if err := a.Deps.Ledger.Check(data.Email, data.Code); err != nil {
		respondErr(c, requestID, err, "Failed to check verification code")
		return
	}

	err := a.Deps.DB.
		Model(model.User{}).
		Where("email = ?", data.Email).
		Update("is_verified", true).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark user as verified", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email successfully verified",
		"requestID": requestID,
	})
}
