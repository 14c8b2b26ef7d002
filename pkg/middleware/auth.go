package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/token"
)

// NewAuthMiddleware resolves the bearer access token into a user and sets
// userID on the context. Refresh tokens are rejected here, only access
// tokens authenticate requests.
func NewAuthMiddleware(tokens *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No authorization header",
				"requestID": requestID,
			})
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Malformed authorization header",
				"requestID": requestID,
			})
			return
		}

		user, err := tokens.Resolve(tokenStr)
		if err != nil {
			if apperr.KindOf(err) == apperr.Unexpected {
				zap.L().Error("Failed to resolve access token", zap.Error(err), zap.String("requestID", requestID))
			}

			c.AbortWithStatusJSON(apperr.Status(err), gin.H{
				"error":     apperr.Message(err),
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

		c.Set("userID", user.ID)
		c.Next()
	}
}
