package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"vacationplanner/internal/api"
	"vacationplanner/internal/auth"
	"vacationplanner/internal/config"
	"vacationplanner/internal/kv"
	"vacationplanner/internal/logging"
	"vacationplanner/internal/redis"
	"vacationplanner/internal/service/ai"
	"vacationplanner/internal/service/assistant"
	"vacationplanner/internal/service/history"
	"vacationplanner/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("VACATION_PLANNER_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.BasicConfig.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open kv store", zap.String("store", cfg.BasicConfig.Store), zap.Error(err))
	}
	defer closeStore()
	logger.Info("kv store ready", zap.String("store", cfg.BasicConfig.Store))

	provider := cfg.Chat.Provider
	generator, err := ai.NewGenerator(ctx, provider, cfg.Providers[provider])
	if err != nil {
		logger.Fatal("init model provider", zap.String("provider", provider), zap.Error(err))
	}

	authService := auth.NewService(store, auth.DefaultPasskeyTTL, logger.Named("auth"))
	historyStore := history.NewStore(store, logger.Named("history"))
	assistantService := assistant.NewService(authService, historyStore, generator, assistant.Options{
		MaxTokens:    cfg.Chat.MaxTokens,
		Temperature:  cfg.Chat.Temperature,
		ModelTimeout: time.Duration(cfg.Chat.ModelTimeoutSeconds) * time.Second,
	}, logger.Named("chat"))
	handlers := api.NewHandler(assistantService, authService, logger.Named("http"))

	if cfg.BasicConfig.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter()

	addr := cfg.BasicConfig.ServerAddress
	logger.Info("server listening", zap.String("address", addr), zap.String("provider", provider))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// openStore builds the configured kv backend and returns its cleanup function.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (kv.Store, func(), error) {
	switch cfg.BasicConfig.Store {
	case "redis":
		rdb, err := redis.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return rdb, func() { rdb.Close() }, nil
	case "sqlite", "sqlite3", "mysql":
		dbType := cfg.BasicConfig.Store
		db, err := storage.Open(dbType, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(db, dbType); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		kvStore := storage.NewKVStore(db, dbType)
		kvStore.StartExpirySweeper(ctx, storage.DefaultSweepInterval, logger.Named("sweeper"))
		return kvStore, func() { db.Close() }, nil
	case "memory":
		return kv.NewMemoryStore(10 * time.Minute), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store: %s", cfg.BasicConfig.Store)
	}
}
