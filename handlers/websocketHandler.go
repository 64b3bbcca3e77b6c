package handlers

import (
	"net/http"

	"gossipserver/gossip"
	"gossipserver/gossip/broadcast"
	"gossipserver/gossip/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket接続へのアップグレードを行い、セッションのスナップショットを配信する
func HandleConnections(c *gin.Context, svc *session.Service, hub *broadcast.Hub, upgrader websocket.Upgrader, logger *zap.Logger) {
	sessionID, ok := activeSession(c, svc, logger)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade が既にエラーレスポンスを書いている
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	// セッションのロック中に登録と初期状態の取得を行い、その間の更新を取りこぼさない
	var watcher *broadcast.Watcher
	err = svc.Watch(c.Request.Context(), sessionID, func(snap gossip.RoundSnapshot) {
		watcher = hub.Attach(conn, sessionID, snap)
	})
	if err != nil {
		logger.Error("Failed to load session for watcher", zap.String("sessionID", sessionID), zap.Error(err))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable"))
		conn.Close()
		return
	}
	logger.Info("New watcher added", zap.String("sessionID", sessionID))
	hub.Serve(watcher)
}

// 許可されたオリジンのみ受け付ける。設定が空の場合はすべて許可する
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || origin == "" || allowed[origin]
		},
	}
}
