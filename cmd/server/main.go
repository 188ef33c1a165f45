package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"passit-client/internal/cache/local"
	rcache "passit-client/internal/cache/redis"
	"passit-client/internal/common/logger"
	"passit-client/internal/config"
	apihttp "passit-client/internal/http"
	"passit-client/internal/platform/ledger"
	rplatform "passit-client/internal/platform/redis"
	"passit-client/internal/service/artifact"
	"passit-client/internal/service/claim"
	"passit-client/internal/service/poller"
	"passit-client/internal/service/preflight"
	"passit-client/internal/service/profile"
)

// @title           Pass-it Claim API
// @version         1.0
// @description     Display API of the pass-it claim client: token preflight, claim submission, confirmation tracking and card generation.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init-data string

// @tag.name flows
// @tag.description Claim flows: preflight, identity, proof, submission and confirmation

// @tag.name cards
// @tag.description Printable invitation cards built from child tokens

// @tag.name profile
// @tag.description Read-only dashboard data

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("passit-server", false)
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("passit-server", cfg.Debug)

	log.Info().
		Str("ledger", cfg.Ledger.BaseURL).
		Bool("debug", cfg.Debug).
		Msg("Starting pass-it claim server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledgerClient := ledger.New(cfg.Ledger.BaseURL, cfg.Ledger.Timeout, log.Logger)

	var profileCache profile.Cache
	if cfg.RedisEnabled() {
		rdb, err := rplatform.Open(ctx, rplatform.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		profileCache = rcache.NewProfileCache(rdb, cfg.Redis.ProfileTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Profile cache enabled")
	}

	cardCache, err := local.NewBigCache(cfg.Artifacts.CacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create card cache")
	}
	defer cardCache.Close()

	flows := claim.NewRegistry(claim.Deps{
		Preflight: preflight.NewService(ledgerClient, log.Logger),
		Submitter: claim.NewSubmitter(ledgerClient, log.Logger),
		Poller:    poller.New(ledgerClient, cfg.Polling.Interval, cfg.Polling.MaxAttempts, log.Logger),
		Log:       log.Logger,
	}, claim.FlowOptions{
		PollInterval:     cfg.Polling.Interval,
		PollMaxAttempts:  cfg.Polling.MaxAttempts,
		AllowSkipWaiting: cfg.Flows.AllowSkipWaiting,
	}, cfg.Flows.Capacity, cfg.Flows.IdleTTL)
	if err := flows.StartSweeper(cfg.Flows.SweepInterval); err != nil {
		log.Fatal().Err(err).Msg("Failed to start flow sweeper")
	}
	defer flows.Close()

	router, err := apihttp.NewRouter(apihttp.Deps{
		Flows:     flows,
		Artifacts: artifact.NewGenerator(cfg.Artifacts.ShareBaseURL, artifact.NewRenderer(cardCache, log.Logger), log.Logger),
		Profiles:  profile.NewService(ledgerClient, profileCache, log.Logger),
		Log:       log.Logger,
	}, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	server := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
