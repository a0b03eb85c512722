// Package bot assembles the command runtime shared by every transport.
package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/command"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
	"github.com/keshon/commandeer/internal/storage"
	"github.com/keshon/commandeer/pkg/jobmgr"
)

const janitorJob = "cooldown-janitor"

// Runtime owns the registry and state stores. Transports ask it for a
// dispatcher once they know the bot's own ID.
type Runtime struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     *storage.Storage
	registry  *core.Registry
	admins    core.Admins
	memory    *core.MemoryCooldowns
	cooldowns core.CooldownStore
	jobs      *jobmgr.Manager
}

// New picks the cooldown backend named by cfg.
func New(cfg *config.Config, store *storage.Storage, logger zerolog.Logger) *Runtime {
	rt := &Runtime{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		registry:  core.NewRegistry(logger),
		admins:    core.NewAdmins(cfg.Owner, cfg.Admins...),
		cooldowns: store,
	}
	rt.jobs = jobmgr.NewManager(rt.reportJob)
	if cfg.CooldownBackend == config.CooldownBackendMemory {
		rt.memory = core.NewMemoryCooldowns()
		rt.cooldowns = rt.memory
	}
	return rt
}

// RegisterBuiltins registers the built-in commands and restores the ones
// disabled everywhere in a previous run.
func (rt *Runtime) RegisterBuiltins() error {
	err := rt.registry.Register(command.All(command.Deps{
		Registry: rt.registry,
		Prefixes: rt.store,
		Toggles:  rt.store,
	})...)
	if err != nil {
		return fmt.Errorf("register builtins: %w", err)
	}
	return rt.restoreDisabled()
}

func (rt *Runtime) restoreDisabled() error {
	names, err := rt.store.GloballyDisabled(rt.registry.Names())
	if err != nil {
		return fmt.Errorf("restore disabled commands: %w", err)
	}
	for _, name := range names {
		if err := rt.registry.Disable(name); err != nil {
			return err
		}
		rt.logger.Info().Str("command", name).Msg("command disabled everywhere")
	}
	return nil
}

func (rt *Runtime) Registry() *core.Registry { return rt.registry }

func (rt *Runtime) Admins() core.Admins { return rt.admins }

// Dispatcher wires a dispatcher for one transport.
func (rt *Runtime) Dispatcher(botID string, dir argument.Directory, messenger core.Messenger, perms core.PermissionChecker) *core.Dispatcher {
	pipeline := &core.Pipeline{
		Admins:          rt.admins,
		Messenger:       messenger,
		Permissions:     perms,
		Cooldowns:       rt.cooldowns,
		Disabled:        rt.store,
		BotID:           botID,
		AdminBypassesDM: rt.cfg.AdminBypassDM,
		Logger:          rt.logger.With().Str("component", "guard").Logger(),
	}
	return core.NewDispatcher(core.DispatcherOptions{
		BotID:        botID,
		GlobalPrefix: rt.cfg.GlobalPrefix,
		Prefixes:     rt.store,
		IgnoreBots:   rt.cfg.IgnoreBots,
		TestMode:     rt.cfg.Test,
		Admins:       rt.admins,
		Registry:     rt.registry,
		Pipeline:     pipeline,
		Resolver:     argument.NewResolver(dir),
		Messenger:    messenger,
		Permissions:  perms,
		Middlewares:  []core.Middleware{core.WithCommandLogger(rt.logger)},
		Logger:       rt.logger,
	})
}

// RunCooldownJanitor prunes expired cooldowns from whichever backend is in
// use until ctx is cancelled.
func (rt *Runtime) RunCooldownJanitor(ctx context.Context) {
	if rt.memory != nil {
		rt.memory.RunSweeper(ctx, rt.cfg.CooldownSweep)
		return
	}
	storage.RunCooldownCleaner(ctx, rt.store, rt.registry.Commands, rt.cfg.CooldownSweep, rt.logger)
}

// Start launches the background jobs. They stop when ctx is cancelled or
// Stop is called.
func (rt *Runtime) Start(ctx context.Context) error {
	return rt.jobs.Start(ctx, janitorJob, func(ctx context.Context) error {
		rt.RunCooldownJanitor(ctx)
		return nil
	})
}

// Stop cancels background jobs and waits for them to return.
func (rt *Runtime) Stop() {
	rt.jobs.StopAll()
}

func (rt *Runtime) reportJob(e jobmgr.Event) {
	switch e.State {
	case jobmgr.StateFailed:
		rt.logger.Error().Err(e.Err).Str("job", e.Job).Msg("background job failed")
	case jobmgr.StateRunning:
		rt.logger.Debug().Str("job", e.Job).Msg("background job started")
	default:
		rt.logger.Debug().Str("job", e.Job).Msg("background job stopped")
	}
}
