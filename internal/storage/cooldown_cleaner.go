package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/commandeer/internal/core"
)

// RunCooldownCleaner clears expired command cooldowns every interval until
// ctx is done. commands is called on each tick so late registrations count.
func RunCooldownCleaner(ctx context.Context, store *Storage, commands func() []*core.Command, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.ClearExpiredCooldowns(commands()); err != nil {
				logger.Error().Err(err).Msg("clear expired cooldowns")
			}
		}
	}
}
