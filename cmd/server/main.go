package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/agent"
	"medical-intake-assistant/internal/api"
	"medical-intake-assistant/internal/api/middleware"
	"medical-intake-assistant/internal/config"
	"medical-intake-assistant/internal/consultation"
	"medical-intake-assistant/internal/locate"
	"medical-intake-assistant/internal/platform/telegram"
	"medical-intake-assistant/internal/prescription"
	"medical-intake-assistant/internal/report"
	"medical-intake-assistant/internal/store"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Infrastructure
	prefs, err := store.Open(ctx, store.Options{
		Backend:        cfg.Store,
		SQLitePath:     cfg.SQLitePath,
		DatabaseURL:    cfg.DatabaseURL,
		RedisURL:       cfg.RedisURL,
		MigrationsPath: cfg.MigrationsPath,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("preference store unavailable")
	}
	defer prefs.Close()

	// 2. Clients
	llm := agent.NewLLMClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	voice := agent.NewVoice(
		agent.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModel),
		agent.NewWhisperClient(cfg.STTURL),
	)
	var speaker agent.Speaker
	if cfg.ElevenLabsAPIKey != "" {
		speaker = voice
	} else {
		logger.Warn().Msg("ELEVENLABS_API_KEY is not set, answers will be text only")
	}

	var tg report.TelegramClient
	if cfg.TelegramEnabled() {
		client, err := telegram.NewClient(cfg.TelegramBotToken)
		if err != nil {
			logger.Error().Err(err).Msg("telegram delivery disabled")
		} else {
			tg = client
		}
	}

	// 3. Services
	reportSvc := report.NewService(tg, cfg.TelegramChatID, cfg.PDFFontPath, logger)
	deps := consultation.Deps{
		Store:       prefs,
		Analyzer:    agent.NewAnalyzer(llm, speaker, logger),
		Transcriber: voice,
		Speaker:     speaker,
		Suggester:   llm,
		Assembler:   prescription.NewAssembler(llm),
		Finder:      locate.NewFinder(nil, logger),
	}
	if tg != nil {
		deps.Reporter = reportSvc
	}
	consultationSvc := consultation.NewService(deps, logger)
	consultationHandler := consultation.NewHandler(consultationSvc, reportSvc, logger)

	// 4. Router
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, logger)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)
	router := api.NewRouter(logger, consultationHandler, limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.Store).
			Msg("starting intake server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
