package handlers

import (
	"errors"
	"net/http"

	"gossipserver/gossip"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError はエラーの種類に応じたステータスコードでレスポンスを返します。
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, gossip.ErrInvalidParameters):
		status, code = http.StatusBadRequest, "invalid_parameters"
	case errors.Is(err, gossip.ErrAlreadyUsed):
		status, code = http.StatusBadRequest, "already_used"
	case errors.Is(err, gossip.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, gossip.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"status": code, "error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"status": code, "error": err.Error()})
}
