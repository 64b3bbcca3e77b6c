package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gossipserver/models"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetDefaults は全設定項目のデフォルト値を登録する
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("debug", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "gossip")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("store", "tiered")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("idle_timeout", 2*time.Hour)
	v.SetDefault("initial_participants", 10)
	v.SetDefault("max_participants", 100)
	v.SetDefault("initial_lives", 3)
	v.SetDefault("verification_scope", "session")
}

// LoadConfig は設定ファイル（無くてもよい）を読み込み、GOSSIP_ 環境変数で上書きして検証する。
// 従来の REDIS_ADDR, REDIS_PASSWORD, REDIS_DB も使える
func LoadConfig(v *viper.Viper, filename string) (models.Config, error) {
	var config models.Config

	SetDefaults(v)
	v.SetEnvPrefix("GOSSIP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"redis_addr", "redis_password", "redis_db"} {
		if err := v.BindEnv(key, "GOSSIP_"+strings.ToUpper(key), strings.ToUpper(key)); err != nil {
			return config, err
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("reading %s: %w", filename, err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// InitPostgreSQL はリトライ付きで接続し、マイグレーションを行う
func InitPostgreSQL(config models.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s password=%s sslmode=%s",
		config.DBHost, config.DBUser, config.DBName, config.DBPassword, config.DBSSLMode)

	const maxRetries = 3
	const retryInterval = 5 * time.Second
	var db *gorm.DB
	var err error
	for i := 0; i <= maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		logger.Error("データベース接続のリトライ", zap.Int("retry", i), zap.Error(err))
		time.Sleep(retryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("Connected to PostgreSQL", zap.String("host", config.DBHost), zap.String("db", config.DBName))
	return db, nil
}

// Migrate は users と matches テーブルを作成・更新する
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Match{}); err != nil {
		return fmt.Errorf("マイグレーションに失敗しました: %w", err)
	}
	return nil
}

func InitRedis(config models.Config, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		rdb.Close()
		return nil, err
	}

	logger.Info("Connected to Redis", zap.String("addr", config.RedisAddr))
	return rdb, nil
}
