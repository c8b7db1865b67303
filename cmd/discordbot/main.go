// Package main provides the Discord bot binary: a gateway listener that
// answers prefixed roll commands in guild channels.
package main

import (
	"context"
	"flag"
	"log"
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
	"github.com/commlink/rollbot/internal/platform/discord"
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

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}

	campaigns := postgres.NewCampaignRepository(pool.DB())
	market := postgres.NewMarketRepository(pool.DB())
	characters := commlink.NewClient(cfg.Commlink, logger)
	encounters := scripting.NewLoader(cfg.Encounters.ScriptDir, logger)

	registry := roll.NewRegistry(roll.Env{
		Roller:    roller,
		Cache:     store,
		Combat:    combat.NewCoordinator(store, logger),
		Campaigns: campaigns,
		Market:    market,
		Webhook:   webhook.NewPoster(0, logger),
		Logger:    logger,
		Now:       time.Now,
	}, encounters)

	dispatcher := bot.NewDispatcher(campaigns, characters, registry, logger)
	handler, err := discord.NewHandler(cfg.Discord, dispatcher, logger)
	if err != nil {
		logger.Fatal("creating discord session", zap.Error(err))
	}

	runner := server.NewRunner(logger)
	runner.Listen("discord-gateway", handler)
	runner.Defer("database", pool.Close)
	runner.Defer("redis", func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing redis", zap.Error(err))
		}
	})

	logger.Info("discord bot connecting",
		zap.String("prefix", cfg.Discord.CommandPrefix),
	)
	if err := runner.Run(ctx); err != nil {
		logger.Fatal("runner exited", zap.Error(err))
	}
}
