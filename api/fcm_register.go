package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type fcmRegisterBody struct {
	Token     string `json:"fcm_token"`
	SessionID string `json:"session_id"`
}

func (a *API) FcmRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data fcmRegisterBody
	if err := c.BindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	if strings.TrimSpace(data.Token) == "" || strings.TrimSpace(data.SessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "An fcm_token and a session_id are required",
			"requestID": requestID,
		})
		return
	}

	rec, err := a.Deps.Notifications.RegisterToken(userID, data.SessionID, data.Token)
	if err != nil {
		respondErr(c, requestID, err, "Failed to register push token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Push token registered",
		"session_id": rec.SessionID,
		"requestID":  requestID,
	})
}
