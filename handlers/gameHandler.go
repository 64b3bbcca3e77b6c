package handlers

import (
	"fmt"
	"net/http"

	"gossipserver/gossip"
	"gossipserver/gossip/session"
	"gossipserver/middlewares"
	"gossipserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JoinHandler は進行中のセッションを再開するか、新しいセッションを開始します。
func JoinHandler(c *gin.Context, svc *session.Service, logger *zap.Logger) {
	var req models.JoinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_parameters", "error": err.Error()})
			return
		}
	}

	res, err := svc.Join(c.Request.Context(), middlewares.GetUserID(c), req.ParticipantCount, req.Labels)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	status := http.StatusOK
	if res.IsNew {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// LeaveHandler は進行中のセッションを放棄します。
func LeaveHandler(c *gin.Context, svc *session.Service, logger *zap.Logger) {
	sessionID, ok := activeSession(c, svc, logger)
	if !ok {
		return
	}
	if err := svc.Abandon(c.Request.Context(), sessionID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "status": gossip.StatusAbandoned})
}

// StateHandler はスナップショットを返します。sessionId クエリがなければ進行中のセッション、
// あれば自分の終了済みセッションも参照できる
func StateHandler(c *gin.Context, svc *session.Service, logger *zap.Logger) {
	sessionID, ok := requestedSession(c, svc, logger)
	if !ok {
		return
	}
	snap, err := svc.GetState(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "snapshot": snap})
}

// AccuseHandler は犯人を指名します。
func AccuseHandler(c *gin.Context, svc *session.Service, logger *zap.Logger) {
	var req models.AccuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_parameters", "error": err.Error()})
		return
	}
	sessionID, ok := activeSession(c, svc, logger)
	if !ok {
		return
	}

	out, err := svc.SubmitAccusation(c.Request.Context(), sessionID, *req.ParticipantID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HintHandler はグラフを公開します（1ラウンド1回）。
func HintHandler(c *gin.Context, svc *session.Service, logger *zap.Logger) {
	sessionID, ok := activeSession(c, svc, logger)
	if !ok {
		return
	}
	out, err := svc.RequestHint(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// VerifyHandler は証言が嘘かどうかを確認します。
func VerifyHandler(c *gin.Context, svc *session.Service, logger *zap.Logger) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_parameters", "error": err.Error()})
		return
	}
	sessionID, ok := activeSession(c, svc, logger)
	if !ok {
		return
	}

	isFalse, err := svc.VerifyTestimony(c.Request.Context(), sessionID, *req.Index)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": *req.Index, "isFalse": isFalse})
}

// activeSession は進行中のセッションIDを返す。無い場合はエラーレスポンスを書いて false を返す
func activeSession(c *gin.Context, svc *session.Service, logger *zap.Logger) (string, bool) {
	sessionID, err := svc.ActiveSession(c.Request.Context(), middlewares.GetUserID(c))
	if err != nil {
		respondError(c, logger, fmt.Errorf("no active session: %w", err))
		return "", false
	}
	return sessionID, true
}

func requestedSession(c *gin.Context, svc *session.Service, logger *zap.Logger) (string, bool) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		return activeSession(c, svc, logger)
	}
	owner, err := svc.Owner(c.Request.Context(), sessionID)
	if err == nil && owner != middlewares.GetUserID(c) {
		// 他人のセッションは存在しないものとして扱う
		err = fmt.Errorf("session %s: %w", sessionID, gossip.ErrNotFound)
	}
	if err != nil {
		respondError(c, logger, err)
		return "", false
	}
	return sessionID, true
}
