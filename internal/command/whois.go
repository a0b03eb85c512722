package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
)

func Whois() *core.Command {
	return &core.Command{
		Name:        "whois",
		Aliases:     []string{"user"},
		Description: "Show who a server member is",
		Module:      config.ModuleUtilities,
		Arguments: []*argument.Spec{
			{
				Key:            "member",
				Label:          "A mention or ID of a server member",
				Type:           argument.TypeMember,
				Required:       true,
				InvalidMessage: "That user is not a member of this server",
			},
		},
		Examples: []core.Example{
			{Name: "Mention", Description: "Look up a member by mention", Snippet: "whois @someone"},
		},
		Run: func(ctx context.Context, inv *core.Invocation) error {
			values, ok, err := arguments(ctx, inv)
			if !ok {
				return err
			}
			m := values.Get("member").Member()
			if m == nil || m.User == nil {
				return failure(ctx, inv, "That user is not a member of this server")
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "**%s** (`%s`)\n", m.User.Username, m.User.ID)
			if m.Nick != "" {
				fmt.Fprintf(&sb, "Nickname: %s\n", m.Nick)
			}
			fmt.Fprintf(&sb, "Roles: %d\n", len(m.Roles))
			if m.User.Bot {
				sb.WriteString("Bot account\n")
			}
			return inv.Reply(ctx, strings.TrimRight(sb.String(), "\n"))
		},
	}
}
