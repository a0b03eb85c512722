package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// ApplyMiddlewares wraps h so the last middleware runs first.
func ApplyMiddlewares(h Handler, mws ...Middleware) Handler {
	for _, mw := range mws {
		if mw != nil {
			h = mw(h)
		}
	}
	return h
}

// WithCommandLogger logs every finished invocation with its latency.
func WithCommandLogger(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			start := time.Now()
			err := next(ctx, inv)

			var ev *zerolog.Event
			switch {
			case errors.Is(err, ErrBlocked):
				ev = logger.Debug()
			case err != nil:
				ev = logger.Error().Err(err)
			default:
				ev = logger.Info()
			}
			ev.Str("invocation", inv.ID).
				Str("command", inv.Command.Name).
				Str("user", inv.AuthorID).
				Str("guild", inv.GuildID).
				Dur("took", time.Since(start)).
				Bool("blocked", errors.Is(err, ErrBlocked)).
				Msg("command finished")
			return err
		}
	}
}
