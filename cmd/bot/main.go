// Package main is the entry point for the UPI payment verification bot.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"upi-pay-bot/internal/bot"
	"upi-pay-bot/internal/config"
	"upi-pay-bot/internal/content"
	"upi-pay-bot/internal/game"
	"upi-pay-bot/internal/game/coin"
	"upi-pay-bot/internal/game/dice"
	"upi-pay-bot/internal/game/rps"
	"upi-pay-bot/internal/game/session"
	"upi-pay-bot/internal/handler"
	"upi-pay-bot/internal/jobs"
	"upi-pay-bot/internal/metrics"
	"upi-pay-bot/internal/ocr"
	"upi-pay-bot/internal/payment"
	"upi-pay-bot/internal/pkg/db"
	"upi-pay-bot/internal/pkg/lock"
	"upi-pay-bot/internal/repository"
	"upi-pay-bot/internal/service"
	"upi-pay-bot/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	kv := newKV(ctx, cfg)

	userRepo := repository.NewUserRepository(dbPool.Pool)
	paymentRepo := repository.NewPaymentRepository(dbPool.Pool)
	quoteRepo := repository.NewQuoteRepository(dbPool.Pool)
	gameRepo := repository.NewGameRepository(dbPool.Pool)

	if err := quoteRepo.SeedDefaults(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to seed quotes")
	}

	userService := service.NewUserService(userRepo)
	adminService := service.NewAdminService(userRepo, paymentRepo)
	paymentStore := service.NewPaymentStore(paymentRepo, userService)
	recorder := service.NewGameRecorder(gameRepo, userService)

	library := content.NewLibrary(
		content.NewHTTPSource(cfg.Content.QuoteURL, cfg.Content.JokeURL, cfg.Content.FactURL, cfg.Content.Timeout),
		newWriterAI(ctx, cfg),
	)
	quoteService := service.NewQuoteService(quoteRepo, library, userService)

	extractor := ocr.NewExtractor(newRecognizer(ctx, cfg), cfg.OCR.Timeout)

	sessions := session.NewManager(kv, recorder, session.DefaultTTL)
	registry := game.NewRegistry()
	for _, g := range []game.Game{coin.New(game.DefaultIntN), rps.New(game.DefaultIntN), dice.New(game.DefaultIntN)} {
		if err := registry.Register(g); err != nil {
			log.Fatal().Err(err).Str("game", g.Name()).Msg("Failed to register game")
		}
	}
	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Commands()).
		Msg("Games registered")

	telegramBot, err := bot.New(&bot.Dependencies{
		Config: cfg,
		Users:  userService,
		Bans:   userService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	transport := telegramBot.Transport()

	engine := payment.NewEngine(paymentStore, transport, transport, extractor, kv, lock.NewUserLock(), payment.Options{
		Scorer: payment.Scorer{
			Weights: payment.Weights{
				UPIID:         cfg.Payment.Weights.UPIID,
				Amount:        cfg.Payment.Weights.Amount,
				TransactionID: cfg.Payment.Weights.TransactionID,
			},
			Threshold: cfg.Payment.AutoApproveThreshold,
		},
		TempDir:       cfg.Payment.TempDir,
		MaxFileSize:   cfg.Payment.MaxFileSize,
		AdminIDs:      cfg.Admin.IDs,
		ChannelURL:    cfg.Links.Channel,
		SupportHandle: cfg.Links.SupportHandle,
		PendingTTL:    cfg.Payment.PendingTTL,
		LockTimeout:   cfg.Payment.ReviewLockTimeout,
	})

	menuHandler := handler.NewMenuHandler(cfg, userService)
	gameHandler := handler.NewGameHandler(registry, sessions, adminService)
	contentHandler := handler.NewContentHandler(quoteService, library)
	adminHandler := handler.NewAdminHandler(adminService, userService, transport, kv)
	err = telegramBot.Register(&bot.Handlers{
		Menu:    menuHandler,
		Payment: handler.NewPaymentHandler(cfg, engine, userService, transport, extractor),
		Game:    gameHandler,
		Content: contentHandler,
		Admin:   adminHandler,
		Text:    handler.NewTextHandler(cfg, adminHandler, menuHandler, gameHandler, contentHandler),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register handlers")
	}

	cleaner := jobs.NewTempCleaner(cfg.Payment.TempDir, cfg.Cleanup.MaxAge, cfg.Cleanup.Schedule, func(ctx context.Context) (map[string]bool, error) {
		pending, err := engine.PendingReviews(ctx)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]bool, len(pending))
		for _, p := range pending {
			keep[p.FilePath] = true
		}
		return keep, nil
	})
	if err := cleaner.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule temp cleanup")
	}
	defer cleaner.Stop()

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, dbPool)
		metricsServer.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	if metricsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to stop metrics server")
		}
		stop()
	}
	log.Info().Msg("Bot stopped gracefully")
}

// newKV returns the Redis store when an address is configured, the
// in-process store otherwise.
func newKV(ctx context.Context, cfg *config.Config) store.KV {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("Using in-memory key-value store")
		return store.NewMemory()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedis(rdb, cfg.Redis.KeyPrefix)
	if err := kv.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis key-value store")
	return kv
}

// newRecognizer returns nil when OCR is not configured, which leaves every
// screenshot to manual review.
func newRecognizer(ctx context.Context, cfg *config.Config) ocr.Recognizer {
	if !cfg.OCR.Enabled() {
		log.Warn().Msg("OCR disabled; screenshots go to manual review")
		return nil
	}
	rec, err := ocr.NewGeminiRecognizer(ctx, ocr.GeminiOptions{
		APIKey:     cfg.OCR.APIKey,
		Model:      cfg.OCR.Model,
		BaseURL:    cfg.OCR.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.OCR.Timeout},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create OCR client; OCR disabled")
		return nil
	}
	return rec
}

func newWriterAI(ctx context.Context, cfg *config.Config) content.Fetcher {
	if !cfg.AI.Enabled() {
		return nil
	}
	gen, err := content.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, &http.Client{Timeout: cfg.AI.Timeout})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create AI client; using static content")
		return nil
	}
	return gen
}
