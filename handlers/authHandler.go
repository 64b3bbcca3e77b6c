package handlers

import (
	"net/http"

	"gossipserver/auth"
	"gossipserver/middlewares"
	"gossipserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IssueToken は匿名プレイヤーを登録し、トークンを発行します。
func IssueToken(c *gin.Context, registry auth.Registry, logger *zap.Logger) {
	var req models.TokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Token request bind error", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_parameters", "error": err.Error()})
			return
		}
	}

	token, userID, err := middlewares.GenerateToken(c.Request.Context(), registry, req.Nickname, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "Failed to generate token"})
		return
	}

	logger.Info("Token issued", zap.Uint("userID", userID))
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": userID})
}
