package middlewares

import (
	"fmt"
	"strings"

	"gossipserver/auth"
	"gossipserver/models"

	"github.com/gin-gonic/gin"
)

// リクエストからJWTトークンを取り出し、検証済みのクレームを返します。
// ブラウザのWebSocketはヘッダーを付けられないため、クエリの token も見る
func GetClaimsFromRequest(c *gin.Context) (*models.MyClaims, error) {
	tokenString := c.GetHeader("Authorization")
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, fmt.Errorf("token is required")
	}
	return auth.ParseToken(tokenString)
}

// AuthMiddleware がコンテキストに保存したユーザーIDを返す
func GetUserID(c *gin.Context) uint {
	v, _ := c.Get(userIDKey)
	id, _ := v.(uint)
	return id
}
