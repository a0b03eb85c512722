package command

import (
	"context"
	"strings"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
)

const (
	scopeHere   = "here"
	scopeGlobal = "global"
)

func toggleArguments() []*argument.Spec {
	return []*argument.Spec{
		{Key: "command", Label: "The command to toggle", Type: argument.TypeCustom, CustomTypeName: "command name", Required: true},
		{Key: "scope", Label: "Where to apply the change", Type: argument.TypeString, Of: []string{scopeHere, scopeGlobal}, Default: scopeHere},
	}
}

// Commands toggles other commands for the current server or everywhere.
func Commands(d Deps) *core.Command {
	return &core.Command{
		Name:        "commands",
		Aliases:     []string{"cmd"},
		Description: "Enable or disable commands",
		Module:      config.ModuleMaintenance,
		Admin:       true,
		DM:          true,
		Subcommands: []*core.Subcommand{
			{
				Identifiers: []string{"disable", "off"},
				Description: "Disable a command",
				Arguments:   toggleArguments(),
				Run:         toggle(d, true),
			},
			{
				Identifiers: []string{"enable", "on"},
				Description: "Enable a command",
				Arguments:   toggleArguments(),
				Run:         toggle(d, false),
			},
		},
		Examples: []core.Example{
			{Name: "Here", Description: "Disable ping in this server", Snippet: "commands disable ping"},
			{Name: "Everywhere", Description: "Enable ping in every server", Snippet: "commands enable ping global"},
		},
		Run: func(ctx context.Context, inv *core.Invocation) error {
			var disabled []string
			for _, cmd := range d.Registry.Commands() {
				if cmd.Disabled() {
					disabled = append(disabled, cmd.Name)
				}
			}
			msg := "Usage: `" + inv.Prefix + "commands enable|disable <command> [here|global]`"
			if len(disabled) > 0 {
				msg += "\nDisabled everywhere: `" + strings.Join(disabled, "`, `") + "`"
			}
			return inv.Reply(ctx, msg)
		},
	}
}

func toggle(d Deps, disable bool) core.SubcommandHandler {
	return func(ctx context.Context, owner *core.Command, inv *core.Invocation, args []string, identifier string) error {
		values, ok, err := resolve(ctx, inv, toggleArguments(), args)
		if !ok {
			return err
		}
		name := values.Get("command").String()
		cmd, found := d.Registry.Resolve(name)
		if !found {
			return failure(ctx, inv, "Unknown command `%s`", name)
		}
		if cmd == owner {
			return failure(ctx, inv, "`%s` can't be toggled", cmd.Name)
		}

		global := values.Get("scope").String() == scopeGlobal || inv.InDM()
		guildID := inv.GuildID
		if global {
			guildID = ""
			if disable {
				err = d.Registry.Disable(cmd.Name)
			} else {
				err = d.Registry.Enable(cmd.Name)
			}
			if err != nil {
				return err
			}
		}
		if disable {
			err = d.Toggles.DisableCommand(cmd.Name, guildID)
		} else {
			err = d.Toggles.EnableCommand(cmd.Name, guildID)
		}
		if err != nil {
			return err
		}

		inv.Logger.Info().
			Str("target", cmd.Name).
			Str("via", identifier).
			Bool("global", global).
			Bool("disabled", disable).
			Msg("command toggled")

		state, where := "enabled", "in this server"
		if disable {
			state = "disabled"
		}
		if global {
			where = "everywhere"
		}
		return success(ctx, inv, "Command `%s` %s %s", cmd.Name, state, where)
	}
}
