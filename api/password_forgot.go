package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evsys/event-api/internal/model"
	"evsys/event-api/validators"
)

type forgotBody struct {
	Email string `json:"email"`
}

// PasswordForgot issues a reset code for the account. The response is the
// same whether or not the email is registered, so the endpoint can't be
// used to probe for accounts.
func (a *API) PasswordForgot(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data forgotBody
	if err := c.ShouldBind(&data); err != nil || validators.EmailValidator(data.Email) != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "A valid email is required",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := a.Deps.DB.Where("email = ? AND is_deleted = ?", data.Email, false).First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "If the email is registered, a reset code has been sent",
			"requestID": requestID,
		})
		return
	}

	code, err := a.Deps.Ledger.Issue(data.Email)
	if err != nil {
		respondErr(c, requestID, err, "Failed to issue reset code")
		return
	}

	err = a.Deps.DB.
		Model(model.User{}).
		Where("id = ?", user.ID).
		Update("password_reset_pending", true).
		Error
	if err != nil {
		zap.L().Error("Failed to flag pending password reset", zap.Error(err), zap.String("requestID", requestID))
	}

	if err := a.Deps.Mailer.SendPasswordResetMail(data.Email, code); err != nil {
		zap.L().Error("Failed to send password reset email", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "If the email is registered, a reset code has been sent",
		"requestID": requestID,
	})
}
