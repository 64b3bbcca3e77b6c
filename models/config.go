package models

import (
	"errors"
	"fmt"
	"time"
)

// Config 構造体はサーバー全体の設定情報を保持します。
type Config struct {
	Addr  string `mapstructure:"addr"`
	Debug bool   `mapstructure:"debug"`

	DBHost     string `mapstructure:"db_host"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_sslmode"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	Store               string        `mapstructure:"store"` // memory, redis, postgres, tiered
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	IdleTimeout         time.Duration `mapstructure:"idle_timeout"`
	InitialParticipants int           `mapstructure:"initial_participants"`
	MaxParticipants     int           `mapstructure:"max_participants"`
	InitialLives        int           `mapstructure:"initial_lives"`
	VerificationScope   string        `mapstructure:"verification_scope"` // session, round
}

// UsesPostgres はストアがPostgreSQLを必要とするかを返す
func (c Config) UsesPostgres() bool {
	return c.Store == "postgres" || c.Store == "tiered"
}

// UsesRedis はストアがRedisを必要とするかを返す
func (c Config) UsesRedis() bool {
	return c.Store == "redis" || c.Store == "tiered"
}

// Validate は接続前に設定値を検証する
func (c Config) Validate() error {
	switch c.Store {
	case "memory", "redis", "postgres", "tiered":
	default:
		return fmt.Errorf("unknown store %q (memory, redis, postgres, tiered)", c.Store)
	}
	switch c.VerificationScope {
	case "session", "round":
	default:
		return fmt.Errorf("unknown verification_scope %q (session, round)", c.VerificationScope)
	}
	if c.InitialParticipants < 3 {
		return fmt.Errorf("initial_participants must be at least 3: %d", c.InitialParticipants)
	}
	if c.MaxParticipants < c.InitialParticipants {
		return fmt.Errorf("max_participants %d is below initial_participants %d", c.MaxParticipants, c.InitialParticipants)
	}
	if c.InitialLives < 1 {
		return fmt.Errorf("initial_lives must be positive: %d", c.InitialLives)
	}
	if c.SessionTTL <= 0 || c.IdleTimeout <= 0 {
		return errors.New("session_ttl and idle_timeout must be positive")
	}
	return nil
}
