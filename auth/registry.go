package auth

import (
	"context"
	"fmt"
	"sync"

	"gossipserver/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Registry はプレイヤーIDを払い出す
type Registry interface {
	Register(ctx context.Context, nickname string) (uint, error)
}

// GormRegistry は users テーブルにプレイヤーを保存する
type GormRegistry struct {
	db *gorm.DB
}

func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

// GORMによるオートインクリメントのユーザーIDを返す
func (r *GormRegistry) Register(ctx context.Context, nickname string) (uint, error) {
	user := models.User{Nickname: nickname}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return user.ID, nil
}

const userSeqKey = "user:seq"

// RedisRegistry はRedisのカウンタからIDを払い出す
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func (r *RedisRegistry) Register(ctx context.Context, nickname string) (uint, error) {
	id, err := r.rdb.Incr(ctx, userSeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating user id: %w", err)
	}
	return uint(id), nil
}

// MemoryRegistry はプロセス内でIDを数える
type MemoryRegistry struct {
	mu   sync.Mutex
	next uint
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{}
}

func (r *MemoryRegistry) Register(ctx context.Context, nickname string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	return r.next, nil
}
