package command

import (
	"context"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
)

func SetPrefix(d Deps) *core.Command {
	return &core.Command{
		Name:              "set-prefix",
		Aliases:           []string{"prefix"},
		Description:       "Change the command prefix for this server",
		Module:            config.ModuleSettings,
		CallerPermissions: []int64{discordgo.PermissionManageGuild},
		Arguments: []*argument.Spec{
			{
				Key:            "prefix",
				Label:          "The new prefix",
				Type:           argument.TypeString,
				Required:       true,
				CaseSensitive:  true,
				Max:            argument.Bound(config.MaxPrefixLength),
				InvalidMessage: "The prefix must be at most 5 characters long",
			},
		},
		Examples: []core.Example{
			{Name: "Question mark", Description: "Use ? as the prefix", Snippet: "set-prefix ?"},
		},
		Run: func(ctx context.Context, inv *core.Invocation) error {
			values, ok, err := arguments(ctx, inv)
			if !ok {
				return err
			}
			prefix := values.Get("prefix").String()
			if strings.ContainsFunc(prefix, unicode.IsSpace) {
				return failure(ctx, inv, "The prefix can't contain spaces")
			}
			if err := d.Prefixes.SetPrefix(inv.GuildID, prefix); err != nil {
				return err
			}
			inv.Logger.Info().Str("guild", inv.GuildID).Str("prefix", prefix).Msg("prefix changed")
			return success(ctx, inv, "Prefix changed to `%s`", prefix)
		},
	}
}
