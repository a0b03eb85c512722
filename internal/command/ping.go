package command

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
)

func Ping() *core.Command {
	return &core.Command{
		Name:        "ping",
		Aliases:     []string{"pong"},
		Description: "Check that the bot is responding",
		Module:      config.ModuleMaintenance,
		DM:          true,
		Cooldown:    3 * time.Second,
		Run: func(ctx context.Context, inv *core.Invocation) error {
			msg := "🏓 Pong!"
			if !inv.Received.IsZero() {
				msg += fmt.Sprintf(" Response time: `%dms`", time.Since(inv.Received).Milliseconds())
			}
			return inv.Reply(ctx, msg)
		},
	}
}
