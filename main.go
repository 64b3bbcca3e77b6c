package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gossipserver/auth"
	"gossipserver/database"
	"gossipserver/gossip"
	"gossipserver/gossip/broadcast"
	"gossipserver/gossip/session"
	"gossipserver/gossip/store"
	"gossipserver/handlers"
	"gossipserver/models"
	"gossipserver/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "gossipserver",
		Short:         "Game server for the gossip deduction game: find who started the rumour.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := database.LoadConfig(v, configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), config)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&configFile, "config", "c", "config.json", "path to the JSON configuration file")
	fs.String("addr", ":8080", "address to listen on (env: GOSSIP_ADDR)")
	fs.String("store", "tiered", "session store: memory, redis, postgres or tiered (env: GOSSIP_STORE)")
	_ = v.BindPFlag("addr", fs.Lookup("addr"))
	_ = v.BindPFlag("store", fs.Lookup("store"))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func serve(ctx context.Context, config models.Config) error {
	logger, err := utils.InitLogger(config.Debug) // ロガーの初期化
	if err != nil {
		return err
	}
	defer logger.Sync() // ロガーのクリーンアップ

	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	auth.SetSecret(config.JWTSecret)
	if config.JWTSecret == "" {
		logger.Warn("jwt_secret is not set, using the built-in signing key")
	}

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	var dbErr, rdbErr error
	done := make(chan bool, 2)

	go func() {
		if config.UsesPostgres() {
			db, dbErr = database.InitPostgreSQL(config, logger)
		}
		done <- true
	}()
	go func() {
		if config.UsesRedis() {
			rdb, rdbErr = database.InitRedis(config, logger)
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done
	if err := errors.Join(dbErr, rdbErr); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	sessions, registry, reaper := buildStore(config, db, rdb, logger)

	rules := gossip.DefaultRules()
	rules.InitialLives = config.InitialLives
	rules.MaxParticipants = config.MaxParticipants
	rules.Verification = gossip.VerificationScope(config.VerificationScope)
	engine := gossip.NewEngine(rules, gossip.WithSeed(time.Now().UnixNano()))

	hub := broadcast.NewHub(logger)
	svc := session.NewService(engine, sessions, logger,
		session.WithNotifier(hub),
		session.WithDefaultParticipants(config.InitialParticipants),
	)

	// クーロンスケジューラのセットアップと呼び出し
	if reaper != nil {
		c, err := utils.CronCleaner(svc, reaper, config.IdleTimeout, logger)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	router := handlers.NewRouter(handlers.Deps{
		Service:        svc,
		Hub:            hub,
		Registry:       registry,
		AllowedOrigins: config.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{Addr: config.Addr, Handler: router}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", config.Addr), zap.String("store", config.Store))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore は設定に応じてセッションストア、プレイヤー登録先、Cronの対象を選ぶ
func buildStore(config models.Config, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) (session.Store, auth.Registry, store.Reaper) {
	switch config.Store {
	case "memory":
		s := store.NewMemoryStore()
		return s, auth.NewMemoryRegistry(), s
	case "redis":
		// Redis はTTLで期限切れになるためCronは不要
		return store.NewRedisStore(rdb, config.SessionTTL, logger), auth.NewRedisRegistry(rdb), nil
	case "postgres":
		s := store.NewPostgresStore(db, logger)
		return s, auth.NewGormRegistry(db), s
	default:
		s := store.NewTieredStore(
			store.NewRedisStore(rdb, config.SessionTTL, logger),
			store.NewPostgresStore(db, logger),
			logger,
		)
		return s, auth.NewGormRegistry(db), s
	}
}
