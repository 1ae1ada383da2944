// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-companion-chat/internal/catalog"
	"ai-companion-chat/internal/config"
	"ai-companion-chat/internal/domain/model"
	"ai-companion-chat/internal/domain/ports/adapter"
	"ai-companion-chat/internal/domain/ports/repository"
	aiAdapters "ai-companion-chat/internal/infra/adapters/ai"
	mediaAdapters "ai-companion-chat/internal/infra/adapters/media"
	pg "ai-companion-chat/internal/infra/db/postgres"
	"ai-companion-chat/internal/infra/logging"
	"ai-companion-chat/internal/infra/metrics"
	red "ai-companion-chat/internal/infra/redis"
	"ai-companion-chat/internal/infra/sched"
	"ai-companion-chat/internal/infra/web"
	"ai-companion-chat/internal/usecase"
)

// nullHistoryRepo keeps dev mode runnable without Postgres. Reads find
// nothing and writes vanish, so every chat behaves like a guest chat.
type nullHistoryRepo struct{}

func (nullHistoryRepo) Get(context.Context, string, string) ([]model.ChatMessage, error) {
	return nil, nil
}

func (nullHistoryRepo) Save(context.Context, string, string, []model.ChatMessage) error {
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (run without backing services)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Redis (optional) ----
	var historyCache *red.HistoryCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		historyCache = red.NewHistoryCache(redisClient, cfg.Redis.TTL)
	}

	// ---- Postgres ----
	var historyRepo repository.ChatHistoryRepository
	var accountRepo repository.AccountRepository
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connect failed")
		}
		defer pool.Close()
		historyRepo = pg.NewChatHistoryRepo(pool, historyCache)
		accountRepo = pg.NewAccountRepo(pool)
	} else {
		logger.Warn().Msg("no database configured, chats will not survive restarts")
		historyRepo = nullHistoryRepo{}
	}

	// ---- Providers (Gemini ring first, then OpenRouter) ----
	prompts := aiAdapters.NewPromptBuilder(cfg.AI.HistoryTokenBudget)
	failover := aiAdapters.NewFailoverGenerator(logger)
	if len(cfg.AI.GeminiKeys) > 0 {
		gem, err := aiAdapters.NewGeminiGenerator(ctx, cfg.AI.GeminiKeys, cfg.AI.GeminiURL, cfg.AI.GeminiModel, cfg.AI.MaxOutputTokens, cfg.AI.Temperature, prompts)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini setup failed")
		}
		failover.Register("gemini", gem)
		logger.Info().Int("keys", len(cfg.AI.GeminiKeys)).Str("model", cfg.AI.GeminiModel).Msg("gemini provider enabled")
	}
	if cfg.AI.OpenRouterKey != "" {
		or, err := aiAdapters.NewOpenRouterGenerator(cfg.AI.OpenRouterKey, cfg.AI.OpenRouterURL, cfg.AI.OpenRouterModel, cfg.AI.MaxOutputTokens, cfg.AI.Temperature, prompts)
		if err != nil {
			logger.Fatal().Err(err).Msg("openrouter setup failed")
		}
		failover.Register("openrouter", or)
		logger.Info().Str("model", cfg.AI.OpenRouterModel).Msg("openrouter provider enabled")
	}
	if len(cfg.AI.GeminiKeys) == 0 && cfg.AI.OpenRouterKey == "" {
		failover.Register("noop", aiAdapters.NewNoopGenerator())
		logger.Warn().Msg("no provider keys configured, using canned replies")
	}

	// ---- Media (optional) ----
	var mediaStore adapter.MediaStore
	if cfg.Media.BaseURL != "" && cfg.Media.ServiceKey != "" {
		mediaStore, err = mediaAdapters.NewSupabaseStore(cfg.Media.BaseURL, cfg.Media.ServiceKey, cfg.Media.ImageBucket, cfg.Media.VideoBucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("media store setup failed")
		}
	} else {
		logger.Warn().Msg("media storage not configured, uploads disabled")
	}

	// ---- Sessions ----
	cat := catalog.New()
	sessions := usecase.NewSessionManager(cat, historyRepo, failover, usecase.ChatConfig{
		TypingDelayMin: cfg.Chat.TypingDelayMin,
		TypingDelayMax: cfg.Chat.TypingDelayMax,
		HistoryWindow:  cfg.Chat.HistoryWindow,
		SessionIdleTTL: cfg.Chat.SessionIdleTTL,
	}, logger)

	reaper := sched.NewSessionReaper(time.Minute, sessions, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP ----
	srv := web.NewServer(cat, sessions, accountRepo, mediaStore, cfg.Runtime.Dev, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
