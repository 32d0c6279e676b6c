package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/checkin/internal/anthropic"
	"github.com/MikeSquared-Agency/checkin/internal/api"
	"github.com/MikeSquared-Agency/checkin/internal/checkin"
	"github.com/MikeSquared-Agency/checkin/internal/commitment"
	"github.com/MikeSquared-Agency/checkin/internal/config"
	"github.com/MikeSquared-Agency/checkin/internal/hermes"
	"github.com/MikeSquared-Agency/checkin/internal/vapi"
)

func main() {
	// Registered first so it runs after every other deferred cleanup.
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("checkin starting", "port", cfg.Port)

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		slog.Error("failed to load call profile", "path", cfg.ProfilePath, "error", err)
		os.Exit(1)
	}
	slog.Info("call profile loaded", "timezone", profile.Timezone, "trigger_hours", profile.TriggerHours)

	// Missing recipient or platform key is reported per request, not at boot.
	if cfg.PhoneNumber == "" || cfg.VapiAPIKey == "" {
		slog.Warn("PHONE_NUMBER or VAPI_API_KEY not set; triggers will fail until configured")
	}
	platform := vapi.NewClient(cfg.VapiAPIKey, cfg.VapiBaseURL, cfg.VapiTimeout)

	// Anthropic client (optional; without it the raw morning transcript is used)
	var llm commitment.Completer
	if cfg.AnthropicAPIKey != "" {
		llm = anthropic.NewClient(cfg.AnthropicAPIKey, cfg.ExtractModel, cfg.LLMTimeout)
		slog.Info("anthropic client ready", "model", cfg.ExtractModel)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set; commitments will not be extracted")
	}

	deps := checkin.Deps{
		Platform: platform,
		LLM:      llm,
		Content:  os.DirFS(cfg.ContentDir),
	}

	// NATS/Hermes (optional)
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		deps.Publisher = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	svc := checkin.New(cfg, profile, deps, slog.Default())

	srv := api.NewServer(cfg.Port, svc, api.Info{
		Timezone:     profile.Timezone,
		TriggerHours: profile.TriggerHours,
		DefaultSlot:  profile.DefaultSlot,
	}, slog.Default())
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	slog.Info("checkin ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case err := <-srvErr:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
			exitCode = 1
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("checkin stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
