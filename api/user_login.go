package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evsys/event-api/internal/model"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Email field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Password field can't be empty",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	if err := a.Deps.DB.Where("email = ? AND is_deleted = ?", data.Email, false).First(&user).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	ok, err := a.Deps.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	if !user.IsVerified {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "account_not_verified",
			"requestID": requestID,
		})
		return
	}

	if !user.IsActive {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "account_inactive",
			"requestID": requestID,
		})
		return
	}

	pair, err := a.Deps.Tokens.Issue(user.ID)
	if err != nil {
		respondErr(c, requestID, err, "Failed to issue token pair")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userID":  user.ID,
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}
