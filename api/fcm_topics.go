package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type fcmTopicBody struct {
	TopicName string `json:"topicName"`
}

func (a *API) FcmSubscribe(c *gin.Context) {
	a.fcmTopicOp(c, a.Deps.Notifications.Subscribe)
}

func (a *API) FcmUnsubscribe(c *gin.Context) {
	a.fcmTopicOp(c, a.Deps.Notifications.Unsubscribe)
}

func (a *API) fcmTopicOp(c *gin.Context, op func(ctx context.Context, userID, topic string) (int, int, error)) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data fcmTopicBody
	if err := c.BindJSON(&data); err != nil || strings.TrimSpace(data.TopicName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "A topicName is required",
			"requestID": requestID,
		})
		return
	}

	success, failure, err := op(c.Request.Context(), userID, data.TopicName)
	if err != nil {
		respondErr(c, requestID, err, "Failed to update topic subscriptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"successCount": success,
		"failureCount": failure,
		"requestID":    requestID,
	})
}
