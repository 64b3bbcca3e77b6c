package handlers

import (
	"time"

	"gossipserver/auth"
	"gossipserver/gossip/broadcast"
	"gossipserver/gossip/session"
	"gossipserver/middlewares"
	"gossipserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps はルーティングに必要な依存関係
type Deps struct {
	Service        *session.Service
	Hub            *broadcast.Hub
	Registry       auth.Registry
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter は全ルートを登録した gin エンジンを返す
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	svc := d.Service
	upgrader := NewUpgrader(d.AllowedOrigins)

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(d.AllowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.POST("/auth/token", func(c *gin.Context) {
		IssueToken(c, d.Registry, logger)
	})

	game := router.Group("/game", middlewares.AuthMiddleware(logger))
	game.POST("/join", func(c *gin.Context) {
		JoinHandler(c, svc, logger)
	})
	game.POST("/leave", func(c *gin.Context) {
		LeaveHandler(c, svc, logger)
	})
	game.GET("/state", func(c *gin.Context) {
		StateHandler(c, svc, logger)
	})
	game.POST("/accuse", func(c *gin.Context) {
		AccuseHandler(c, svc, logger)
	})
	game.POST("/hint", func(c *gin.Context) {
		HintHandler(c, svc, logger)
	})
	game.POST("/verify", func(c *gin.Context) {
		VerifyHandler(c, svc, logger)
	})

	router.GET("/ws", middlewares.AuthMiddleware(logger), func(c *gin.Context) {
		HandleConnections(c, svc, d.Hub, upgrader, logger)
	})

	return router
}
