// Package main provides the Slack bot binary: the HTTP server that answers
// slash commands and interactive-message callbacks.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/commlink/rollbot/internal/bot"
	"github.com/commlink/rollbot/internal/cache"
	"github.com/commlink/rollbot/internal/commlink"
	"github.com/commlink/rollbot/internal/config"
	"github.com/commlink/rollbot/internal/game/combat"
	"github.com/commlink/rollbot/internal/game/dice"
	"github.com/commlink/rollbot/internal/game/roll"
	"github.com/commlink/rollbot/internal/observability"
	slackplatform "github.com/commlink/rollbot/internal/platform/slack"
	"github.com/commlink/rollbot/internal/scripting"
	"github.com/commlink/rollbot/internal/server"
	"github.com/commlink/rollbot/internal/storage/postgres"
	"github.com/commlink/rollbot/internal/webhook"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	store, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("connecting to redis", zap.Error(err))
	}

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	campaigns := postgres.NewCampaignRepository(pool.DB())
	market := postgres.NewMarketRepository(pool.DB())
	characters := commlink.NewClient(cfg.Commlink, logger)
	poster := slackplatform.NewResultPoster(webhook.NewPoster(0, logger))
	encounters := scripting.NewLoader(cfg.Encounters.ScriptDir, logger)

	registry := roll.NewRegistry(roll.Env{
		Roller:    roller,
		Cache:     store,
		Combat:    combat.NewCoordinator(store, logger),
		Campaigns: campaigns,
		Market:    market,
		Webhook:   poster,
		Logger:    logger,
		Now:       time.Now,
	}, encounters)

	dispatcher := bot.NewDispatcher(campaigns, characters, registry, logger)
	handler := slackplatform.NewHandler(dispatcher, cfg.Slack.SigningSecret, logger)

	mux := http.NewServeMux()
	handler.Register(mux)

	runner := server.NewRunner(logger)
	runner.Listen("slack-http", server.NewHTTPListener(&http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}))
	runner.Defer("database", pool.Close)
	runner.Defer("redis", func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing redis", zap.Error(err))
		}
	})

	logger.Info("slack bot listening", zap.String("addr", cfg.HTTP.Addr()))
	if err := runner.Run(ctx); err != nil {
		logger.Fatal("runner exited", zap.Error(err))
	}
}
