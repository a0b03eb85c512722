package core

import (
	"context"
	"errors"
	"strings"

	"github.com/keshon/commandeer/internal/argument"
)

// SubcommandHandler receives the owning command explicitly along with the
// tokens that follow the matched identifier.
type SubcommandHandler func(ctx context.Context, owner *Command, inv *Invocation, args []string, identifier string) error

// Subcommand is a named branch of a command, selected by its first token.
type Subcommand struct {
	Identifiers []string
	Description string
	Arguments   []*argument.Spec
	Run         SubcommandHandler
}

func (s *Subcommand) validate() error {
	if s == nil {
		return errors.New("nil subcommand")
	}
	if len(s.Identifiers) == 0 {
		return errors.New("no identifiers")
	}
	for _, id := range s.Identifiers {
		if strings.TrimSpace(id) == "" {
			return errors.New("empty identifier")
		}
	}
	if s.Run == nil {
		return errors.New("no handler")
	}
	return validateArguments(s.Arguments)
}

// Usage renders the primary identifier with its argument placeholders.
func (s *Subcommand) Usage() string {
	parts := []string{s.Identifiers[0]}
	for _, a := range s.Arguments {
		parts = append(parts, a.Usage())
	}
	return strings.Join(parts, " ")
}

func (s *Subcommand) matches(token string, caseSensitive bool) (string, bool) {
	for _, id := range s.Identifiers {
		if caseSensitive && id == token {
			return id, true
		}
		if !caseSensitive && strings.EqualFold(id, token) {
			return id, true
		}
	}
	return "", false
}

// Route runs the first subcommand whose identifier matches the invocation's
// first argument. It reports false when nothing matched.
func (c *Command) Route(ctx context.Context, inv *Invocation) (bool, error) {
	if len(inv.Args) == 0 {
		return false, nil
	}
	first := inv.Args[0]
	for _, sub := range c.Subcommands {
		if id, ok := sub.matches(first, c.CaseSensitive); ok {
			return true, sub.Run(ctx, c, inv, inv.Args[1:], id)
		}
	}
	return false, nil
}
