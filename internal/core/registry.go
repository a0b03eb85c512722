package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps names and aliases to commands. Names always win over aliases.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]*Command
	logger   zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		commands: map[string]*Command{},
		aliases:  map[string]*Command{},
		logger:   logger.With().Str("component", "registry").Logger(),
	}
}

// Register validates and adds commands in order, stopping at the first
// failure. A later alias binding replaces an earlier one.
func (r *Registry) Register(cmds ...*Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cmd := range cmds {
		if err := cmd.Validate(); err != nil {
			return fmt.Errorf("register command: %w", err)
		}
		cmd.Name = normalizeCommandName(cmd.Name)
		if _, exists := r.commands[cmd.Name]; exists {
			return fmt.Errorf("register command %q: %w", cmd.Name, ErrDuplicateCommand)
		}
		r.commands[cmd.Name] = cmd

		for i, alias := range cmd.Aliases {
			alias = normalizeCommandName(alias)
			cmd.Aliases[i] = alias
			if alias == "" {
				continue
			}
			if prev, taken := r.aliases[alias]; taken && prev != cmd {
				r.logger.Warn().
					Str("alias", alias).
					Str("previous", prev.Name).
					Str("command", cmd.Name).
					Msg("alias rebound")
			}
			r.aliases[alias] = cmd
		}
	}
	return nil
}

// MustRegister is Register for static command tables; it panics on error.
func (r *Registry) MustRegister(cmds ...*Command) {
	if err := r.Register(cmds...); err != nil {
		panic(err)
	}
}

// Resolve finds a command by name, then by alias.
func (r *Registry) Resolve(token string) (*Command, bool) {
	token = normalizeCommandName(token)
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[token]; ok {
		return cmd, true
	}
	cmd, ok := r.aliases[token]
	return cmd, ok
}

// Disable switches a command off process-wide. It stays resolvable.
func (r *Registry) Disable(name string) error {
	return r.setDisabled(name, true)
}

// Enable reverses Disable.
func (r *Registry) Enable(name string) error {
	return r.setDisabled(name, false)
}

func (r *Registry) setDisabled(name string, disabled bool) error {
	cmd, ok := r.Resolve(name)
	if !ok {
		return fmt.Errorf("toggle command %q: %w", name, ErrUnknownCommand)
	}
	cmd.disabled.Store(disabled)
	return nil
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	list := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		list = append(list, cmd)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Names returns the sorted command names.
func (r *Registry) Names() []string {
	cmds := r.Commands()
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
	}
	return names
}
