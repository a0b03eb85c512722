package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/commandeer/internal/bot"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/console"
	"github.com/keshon/commandeer/internal/logging"
	"github.com/keshon/commandeer/internal/storage"
)

func newConsoleCommand() *cobra.Command {
	var (
		fixturePath string
		storagePath string
		envFile     string
	)
	cmd := &cobra.Command{
		Use:     "console",
		Short:   "Chat with the bot from the terminal against a fixture guild",
		Args:    cobra.NoArgs,
		Example: `commandeer console --fixture fixture.yaml --storage /tmp/console.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if storagePath != "" {
				cfg.StoragePath = storagePath
			}
			return runConsole(cmd.Context(), cfg, fixturePath)
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "yaml file describing the guild")
	cmd.Flags().StringVar(&storagePath, "storage", "", "datastore file (defaults to STORAGE_PATH)")
	cmd.Flags().StringVar(&envFile, "env", ".env", "dotenv file to load")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

func runConsole(ctx context.Context, cfg *config.Config, fixturePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	fixture, err := console.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	if cfg.Owner == "" {
		cfg.Owner = fixture.Guild.Owner
	}

	store, err := storage.New(ctx, cfg.StoragePath,
		datastore.WithLogger(slog.New(zerolog.NewSlogHandler(logger.With().Str("component", "datastore").Logger()))))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
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

	c, err := console.New(fixture, os.Stdout)
	if err != nil {
		return err
	}
	d := rt.Dispatcher(c.BotID(), c.Directory(), c.Messenger(), c.Permissions())
	return c.Run(ctx, d)
}
