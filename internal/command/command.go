// Package command holds the built-in chat commands.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/core"
)

// PrefixStore persists per-guild prefixes.
type PrefixStore interface {
	SetPrefix(guildID, prefix string) error
}

// ToggleStore persists disabled commands. An empty guildID means every guild.
type ToggleStore interface {
	DisableCommand(name, guildID string) error
	EnableCommand(name, guildID string) error
}

// Deps is what the built-in commands need from the running bot.
type Deps struct {
	Registry *core.Registry
	Prefixes PrefixStore
	Toggles  ToggleStore
}

// All returns every built-in command, ready for Registry.Register.
func All(d Deps) []*core.Command {
	return []*core.Command{
		Ping(),
		Help(d),
		SetPrefix(d),
		Commands(d),
		Whois(),
	}
}

func success(ctx context.Context, inv *core.Invocation, format string, a ...any) error {
	return inv.Reply(ctx, "✅ "+fmt.Sprintf(format, a...))
}

func failure(ctx context.Context, inv *core.Invocation, format string, a ...any) error {
	return inv.Reply(ctx, "❌ "+fmt.Sprintf(format, a...))
}

// resolve binds tokens to specs. A rejected argument is answered with its
// error message and ok is false.
func resolve(ctx context.Context, inv *core.Invocation, specs []*argument.Spec, tokens []string) (argument.Values, bool, error) {
	values, err := inv.Resolve(ctx, specs, tokens)
	return replyOnInvalid(ctx, inv, values, err)
}

// arguments resolves the command's own declared arguments.
func arguments(ctx context.Context, inv *core.Invocation) (argument.Values, bool, error) {
	values, err := inv.Arguments(ctx)
	return replyOnInvalid(ctx, inv, values, err)
}

// replyOnInvalid tells the caller which argument was missing or wrong. ok is
// false when the handler should stop.
func replyOnInvalid(ctx context.Context, inv *core.Invocation, values argument.Values, err error) (argument.Values, bool, error) {
	var invalid *argument.InvalidArgumentError
	switch {
	case errors.As(err, &invalid) && invalid.Missing:
		return nil, false, failure(ctx, inv, "Missing argument %s\nUsage: `%s%s`", invalid.Spec.Key, inv.Prefix, inv.Command.Usage())
	case errors.As(err, &invalid):
		return nil, false, failure(ctx, inv, "%s", invalid.Error())
	case err != nil:
		return nil, false, err
	}
	return values, true, nil
}
