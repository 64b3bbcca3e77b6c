package middlewares

import (
	"context"

	"gossipserver/auth"

	"go.uber.org/zap"
)

// 新しいプレイヤーを登録し、JWTトークンを生成する
func GenerateToken(ctx context.Context, registry auth.Registry, nickname string, logger *zap.Logger) (string, uint, error) {
	userID, err := registry.Register(ctx, nickname)
	if err != nil {
		logger.Error("ユーザーID生成中にエラー発生", zap.Error(err))
		return "", 0, err
	}

	tokenString, err := auth.SignToken(userID)
	if err != nil {
		logger.Error("トークン生成中にエラー発生", zap.Error(err))
		return "", 0, err
	}
	return tokenString, userID, nil
}
