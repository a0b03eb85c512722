package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/keshon/commandeer/internal/argument"
)

// Handler runs a command for one invocation.
type Handler func(ctx context.Context, inv *Invocation) error

// Example is a sample usage shown in help output.
type Example struct {
	Name        string
	Description string
	Snippet     string
}

// Command declares a text command. Register it with a Registry before use;
// the registry normalizes Name and Aliases.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Module      string
	Examples    []Example

	// Admin restricts the command to bot admins.
	Admin bool
	// DM allows the command in direct messages.
	DM bool
	// Hidden defaults to Admin; Silent defaults to the hidden state.
	Hidden *bool
	Silent *bool

	CallerPermissions []int64
	BotPermissions    []int64
	Cooldown          time.Duration

	Arguments   []*argument.Spec
	Subcommands []*Subcommand
	// CaseSensitive applies to subcommand identifier matching.
	CaseSensitive bool

	Run Handler

	disabled atomic.Bool
}

// Flag is a helper for setting Hidden and Silent inline.
func Flag(v bool) *bool { return &v }

// IsHidden reports whether the command is left out of help listings.
func (c *Command) IsHidden() bool {
	if c.Hidden != nil {
		return *c.Hidden
	}
	return c.Admin
}

// IsSilent reports whether guard rejections stay unannounced.
func (c *Command) IsSilent() bool {
	if c.Silent != nil {
		return *c.Silent
	}
	return c.IsHidden()
}

// Disabled reports the process-wide disabled flag.
func (c *Command) Disabled() bool { return c.disabled.Load() }

// Usage renders the command name followed by its argument placeholders.
func (c *Command) Usage() string {
	parts := []string{c.Name}
	for _, a := range c.Arguments {
		parts = append(parts, a.Usage())
	}
	return strings.Join(parts, " ")
}

// Validate checks the declaration. Failures wrap ErrInvalidCommand.
func (c *Command) Validate() error {
	if normalizeCommandName(c.Name) == "" {
		return fmt.Errorf("validate command: %w: missing name", ErrInvalidCommand)
	}
	if c.Run == nil && len(c.Subcommands) == 0 {
		return fmt.Errorf("validate command %q: %w: no handler", c.Name, ErrInvalidCommand)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("validate command %q: %w: negative cooldown", c.Name, ErrInvalidCommand)
	}
	if err := validateArguments(c.Arguments); err != nil {
		return fmt.Errorf("validate command %q: %w: %w", c.Name, ErrInvalidCommand, err)
	}
	for i, sub := range c.Subcommands {
		if err := sub.validate(); err != nil {
			return fmt.Errorf("validate command %q: %w: subcommand %d: %w", c.Name, ErrInvalidCommand, i, err)
		}
	}
	return nil
}

func validateArguments(specs []*argument.Spec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("duplicate argument key %q", s.Key)
		}
		seen[s.Key] = struct{}{}
	}
	return nil
}

// Execute routes to a matching subcommand, falling back to Run.
func (c *Command) Execute(ctx context.Context, inv *Invocation) error {
	routed, err := c.Route(ctx, inv)
	if routed {
		return err
	}
	if c.Run == nil {
		return nil
	}
	return c.Run(ctx, inv)
}

func normalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
