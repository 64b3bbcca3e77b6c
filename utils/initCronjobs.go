package utils

import (
	"context"
	"time"

	"gossipserver/gossip/session"
	"gossipserver/gossip/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// 放置セッションを確認する間隔
	reapSchedule = "@every 10m"
	// 終了済みのマッチを削除するジョブ（"分 時 日 月 曜日"）
	purgeSchedule = "0 3 * * *"
	purgeAfter    = 48 * time.Hour
)

// 放置セッションの終了と終了済みセッションの削除を登録する。
// 終了処理はプレイヤーの操作と競合しないよう Service 経由で行う。
// 停止は呼び出し側が返り値の Stop で行う
func CronCleaner(svc *session.Service, reaper store.Reaper, idleTimeout time.Duration, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(reapSchedule, func() {
		AbandonIdleSessions(context.Background(), svc, reaper, time.Now().Add(-idleTimeout), logger)
	}); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(purgeSchedule, func() {
		PurgeFinishedSessions(context.Background(), reaper, time.Now().Add(-purgeAfter), logger)
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

// cutoff 以降に更新のないアクティブなセッションを abandoned にする
func AbandonIdleSessions(ctx context.Context, svc *session.Service, reaper store.Reaper, cutoff time.Time, logger *zap.Logger) []string {
	logger.Info("放置されたセッションを終了する処理を開始", zap.Time("cutoff", cutoff))
	ids, err := svc.ReapIdle(ctx, reaper, cutoff)
	if err != nil {
		logger.Error("放置セッションの更新に失敗しました", zap.Error(err))
		return nil
	}
	if len(ids) > 0 {
		logger.Info("放置セッションを終了しました", zap.Int("sessions_abandoned", len(ids)))
	}
	return ids
}

// cutoff 以降に更新のない終了済みセッションを削除する
func PurgeFinishedSessions(ctx context.Context, reaper store.Reaper, cutoff time.Time, logger *zap.Logger) int64 {
	logger.Info("終了済みセッションを削除する処理を開始", zap.Time("cutoff", cutoff))
	n, err := reaper.PurgeFinished(ctx, cutoff)
	if err != nil {
		logger.Error("終了済みセッションの削除に失敗しました", zap.Error(err))
		return 0
	}
	logger.Info("終了済みセッションの削除完了", zap.Int64("sessions_deleted", n))
	return n
}
