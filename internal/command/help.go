package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/config"
	"github.com/keshon/commandeer/internal/core"
	"github.com/keshon/commandeer/pkg/duration"
)

func Help(d Deps) *core.Command {
	return &core.Command{
		Name:        "help",
		Aliases:     []string{"h"},
		Description: "Get a list of available commands or details about one",
		Module:      config.ModuleInformation,
		DM:          true,
		Arguments: []*argument.Spec{
			{Key: "command", Label: "The command to describe", Type: argument.TypeString},
		},
		Examples: []core.Example{
			{Name: "List", Description: "Show every command", Snippet: "help"},
			{Name: "Details", Description: "Describe the ping command", Snippet: "help ping"},
		},
		Run: func(ctx context.Context, inv *core.Invocation) error {
			values, ok, err := arguments(ctx, inv)
			if !ok {
				return err
			}
			name := values.Get("command").String()
			if name == "" {
				return inv.Reply(ctx, buildHelpByModule(d.Registry, inv))
			}
			cmd, found := d.Registry.Resolve(strings.TrimPrefix(name, inv.Prefix))
			if !found || (cmd.IsHidden() && !inv.Admin) {
				return failure(ctx, inv, "Unknown command `%s`", name)
			}
			return inv.Reply(ctx, buildHelpDetails(cmd, inv.Prefix))
		},
	}
}

func visible(cmd *core.Command, inv *core.Invocation) bool {
	if cmd.IsHidden() && !inv.Admin {
		return false
	}
	return !inv.InDM() || cmd.DM || inv.Admin
}

func buildHelpByModule(reg *core.Registry, inv *core.Invocation) string {
	byModule := make(map[string][]*core.Command)
	for _, cmd := range reg.Commands() {
		if !visible(cmd, inv) {
			continue
		}
		byModule[cmd.Module] = append(byModule[cmd.Module], cmd)
	}

	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		wi, wj := config.ModuleWeight(modules[i]), config.ModuleWeight(modules[j])
		if wi != wj {
			return wi < wj
		}
		return modules[i] < modules[j]
	})

	var sb strings.Builder
	sb.WriteString("📖 **Available commands**\n\n")
	for _, m := range modules {
		title := m
		if title == "" {
			title = "Other"
		}
		fmt.Fprintf(&sb, "**%s**\n", title)
		for _, cmd := range byModule[m] {
			fmt.Fprintf(&sb, "`%s%s` - %s\n", inv.Prefix, cmd.Name, cmd.Description)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Use `%shelp <command>` for details.", inv.Prefix)
	return sb.String()
}

func buildHelpDetails(cmd *core.Command, prefix string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** - %s\n", cmd.Name, cmd.Description)
	if cmd.Module != "" {
		fmt.Fprintf(&sb, "Module: %s\n", cmd.Module)
	}
	fmt.Fprintf(&sb, "Usage: `%s%s`\n", prefix, cmd.Usage())
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&sb, "Aliases: `%s`\n", strings.Join(cmd.Aliases, "`, `"))
	}
	if cmd.Cooldown > 0 {
		fmt.Fprintf(&sb, "Cooldown: %s\n", duration.FormatDuration(cmd.Cooldown, false))
	}
	if len(cmd.CallerPermissions) > 0 {
		names := make([]string, 0, len(cmd.CallerPermissions))
		for _, p := range cmd.CallerPermissions {
			names = append(names, core.PermissionName(p))
		}
		fmt.Fprintf(&sb, "Requires: `%s`\n", strings.Join(names, "`, `"))
	}
	if !cmd.DM {
		sb.WriteString("Server only\n")
	}
	if cmd.Disabled() {
		sb.WriteString("Disabled everywhere\n")
	}

	if len(cmd.Arguments) > 0 {
		sb.WriteString("\n**Arguments**\n")
		writeArguments(&sb, cmd.Arguments)
	}
	if len(cmd.Subcommands) > 0 {
		sb.WriteString("\n**Subcommands**\n")
		for _, sub := range cmd.Subcommands {
			fmt.Fprintf(&sb, "> `%s%s %s` - %s\n", prefix, cmd.Name, sub.Usage(), sub.Description)
		}
	}
	if len(cmd.Examples) > 0 {
		sb.WriteString("\n**Examples**\n")
		for _, ex := range cmd.Examples {
			fmt.Fprintf(&sb, "> **%s**: %s\n> `%s%s`\n", ex.Name, ex.Description, prefix, ex.Snippet)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeArguments(sb *strings.Builder, specs []*argument.Spec) {
	for _, s := range specs {
		fmt.Fprintf(sb, "> `%s` (%s)", s.Key, s.TypeName())
		if s.Label != "" {
			fmt.Fprintf(sb, " - %s", s.Label)
		}
		if len(s.Of) > 0 {
			fmt.Fprintf(sb, ", one of `%s`", strings.Join(s.Of, "`, `"))
		}
		if !s.Required {
			sb.WriteString(" *optional*")
		}
		sb.WriteString("\n")
	}
}
