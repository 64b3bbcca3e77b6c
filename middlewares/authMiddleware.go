package middlewares

import (
	"net/http"
	"time"

	"gossipserver/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDKey = "userID"

// refreshWindow 以内に失効するトークンは新しいものを Authorization ヘッダーで返す
const refreshWindow = time.Hour

// トークン検証を行うミドルウェア
func AuthMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaimsFromRequest(c)
		if err != nil {
			logger.Warn("認証失敗", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "unauthorized", "error": "Unauthorized"})
			return
		}

		if time.Until(time.Unix(claims.ExpiresAt, 0)) < refreshWindow {
			newToken, err := auth.SignToken(claims.UserID)
			if err != nil {
				logger.Error("Failed to refresh token", zap.Error(err))
			} else {
				c.Header("Authorization", newToken)
			}
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}
