package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evsys/event-api/internal/model"
	"evsys/event-api/validators"
)

type resetBody struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (a *API) PasswordReset(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" || data.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email and code are required",
			"requestID": requestID,
		})
		return
	}

	if data.NewPassword != data.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Passwords do not match",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := a.Deps.DB.Where("email = ? AND is_deleted = ?", data.Email, false).First(&user).Error
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

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The code check consumes the attempt budget and burns the code on
	// success, so a reset code is strictly single use
	if err := a.Deps.Ledger.Check(data.Email, data.Code); err != nil {
		respondErr(c, requestID, err, "Failed to check reset code")
		return
	}

	hash, err := a.Deps.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.Deps.DB.
		Model(model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_hash":          hash,
			"password_reset_pending": false,
		}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Force a fresh login everywhere after a reset
	if err := a.Deps.Tokens.Revoke(user.ID); err != nil {
		zap.L().Error("Failed to revoke tokens after reset", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password reset successfully",
		"requestID": requestID,
	})
}
