package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"jobsonar/internal/api/routes"
	"jobsonar/internal/background"
	"jobsonar/internal/bot"
	"jobsonar/internal/classify"
	"jobsonar/internal/config"
	"jobsonar/internal/dedup"
	"jobsonar/internal/embeddings"
	"jobsonar/internal/logging"
	"jobsonar/internal/match"
	"jobsonar/internal/pipeline"
	"jobsonar/internal/profile"
	"jobsonar/internal/scraper"
	"jobsonar/internal/store"
	"jobsonar/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()
	logger.Info("Starting JobSonar", map[string]interface{}{})

	// Open the store
	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		logger.Error("Failed to open store", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer st.Close()

	// Optional Redis hash cache
	var cache *utils.RedisClient
	var gate *dedup.Gate
	if cfg.Redis.Enabled {
		cache = utils.NewRedisClient(cfg)
		gate = dedup.NewGate(st, cache, cfg.Pipeline.DedupWindow)
	} else {
		gate = dedup.NewGate(st, nil, cfg.Pipeline.DedupWindow)
	}

	// Embeddings provider
	provider, err := embeddings.NewFactory(cfg).CreateProvider()
	if err != nil {
		logger.Error("Failed to create embeddings provider", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Profile storage
	cipher, err := profile.NewCipher(cfg.Profiles.Key)
	if err != nil {
		logger.Error("Failed to initialize profile cipher", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	profStore, err := profile.NewStore(cipher, cfg.Profiles.Dir)
	if err != nil {
		logger.Error("Failed to open profile store", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	profCache := profile.NewCache(provider)
	owner := profile.NewOwnerSource(profCache, profStore, cfg.Telegram.OwnerID)

	// Scraper engine
	scr, err := scraper.NewScraperFactory(cfg).CreateScraper(cfg.Scraper.Engine)
	if err != nil {
		logger.Error("Failed to create scraper", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer scr.Cleanup()

	// Telegram bot API
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	api.Debug = cfg.Telegram.Debug

	// Pipeline and processing pool
	classifier := classify.NewClassifier(cfg.Pipeline.MinKeywords)
	matcher := match.NewMatcher(provider)
	alerter := bot.NewAlertSender(api, cfg.Telegram.OwnerID)
	pl := pipeline.New(cfg, classifier, matcher, gate, st, scr, owner, alerter)
	pool := pipeline.NewPool(cfg, pl)

	ctx := context.Background()
	if err := pool.Start(); err != nil {
		logger.Error("Failed to start processing pool", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Telegram bot
	tgBot := bot.New(cfg, api, st, profStore, profCache, pl, pool, alerter)
	if err := tgBot.Start(ctx); err != nil {
		logger.Error("Failed to start bot", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Retention janitor
	janitor := background.NewJanitor(cfg, gate)
	if err := janitor.Start(ctx); err != nil {
		logger.Error("Failed to start janitor", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, cfg, routes.Deps{
		Store:    st,
		Pipeline: pl,
		Pool:     pool,
		Cache:    cache,
		Paused:   tgBot.IsPaused,
		HasProfile: func() bool {
			return profStore.Has(cfg.Telegram.OwnerID)
		},
		Threshold: func() int {
			v, err := st.GetIntSetting(context.Background(), store.SettingMatchThreshold, cfg.Pipeline.DefaultThreshold)
			if err != nil {
				return cfg.Pipeline.DefaultThreshold
			}
			return v
		},
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...", map[string]interface{}{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tgBot.Stop()
		pool.Stop()

		if err := janitor.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping janitor", map[string]interface{}{"error": err.Error()})
		}

		if cache != nil {
			if err := cache.Close(); err != nil {
				logger.Error("Error closing Redis client", map[string]interface{}{"error": err.Error()})
			}
		}

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Shutdown complete", map[string]interface{}{})
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Info("Server stopped", map[string]interface{}{"reason": err.Error()})
	}
}
