package auth

import (
	"fmt"
	"time"

	"gossipserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークンの署名に使う鍵。起動時に設定ファイルの値で上書きされる
var JwtKey = []byte("your_secret_key")

// TokenTTL はトークンの有効期限
const TokenTTL = 72 * time.Hour

// SetSecret は署名鍵を差し替える。空文字の場合はデフォルトのまま
func SetSecret(secret string) {
	if secret != "" {
		JwtKey = []byte(secret)
	}
}

// SignToken はユーザーのHS256トークンを発行する
func SignToken(userID uint) (string, error) {
	claims := &models.MyClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(TokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseToken はトークンを検証し、クレームを返す
func ParseToken(tokenString string) (*models.MyClaims, error) {
	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// IsValidToken はトークンが有効かどうかを返す
func IsValidToken(tokenString string) (bool, error) {
	if _, err := ParseToken(tokenString); err != nil {
		return false, err
	}
	return true, nil
}
