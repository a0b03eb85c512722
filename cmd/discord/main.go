// cmd/discord/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/commandeer/internal/bot"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
	"github.com/keshon/commandeer/internal/discord"
	"github.com/keshon/commandeer/internal/logging"
	"github.com/keshon/commandeer/internal/storage"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("discord bot error")
		closer.Close()
		os.Exit(1)
	}
	logger.Info().Msg("Discord bot exited cleanly")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().Str("prefix", cfg.GlobalPrefix).Bool("test", cfg.Test).Msg("Starting bot...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.StoragePath,
		datastore.WithLogger(slog.New(zerolog.NewSlogHandler(logger.With().Str("component", "datastore").Logger()))))
	if err != nil {
		return err
	}
	defer store.Close()

	rt := bot.New(cfg, store, logger)
	if err := rt.RegisterBuiltins(); err != nil {
		return err
	}
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer rt.Stop()

	b, err := discord.New(cfg.DiscordToken, logger)
	if err != nil {
		return err
	}
	return b.Run(ctx, func(botID string) *core.Dispatcher {
		return rt.Dispatcher(botID, b.Directory(), b.Messenger(), b.Permissions())
	})
}
