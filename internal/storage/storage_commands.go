package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/keshon/commandeer/internal/core"
)

// DisableCommand switches a command off in one guild, or everywhere when
// guildID is empty.
func (s *Storage) DisableCommand(name, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.loadCommandRecord(name)
	if err != nil {
		return err
	}

	if guildID == "" {
		record.GloballyDisabled = true
	} else if !slices.Contains(record.DisabledGuilds, guildID) {
		record.DisabledGuilds = append(record.DisabledGuilds, guildID)
	}
	return s.saveCommandRecord(record)
}

// EnableCommand reverses DisableCommand for the same scope.
func (s *Storage) EnableCommand(name, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.loadCommandRecord(name)
	if err != nil {
		return err
	}

	if guildID == "" {
		record.GloballyDisabled = false
	} else {
		record.DisabledGuilds = slices.DeleteFunc(record.DisabledGuilds, func(g string) bool {
			return g == guildID
		})
	}
	return s.saveCommandRecord(record)
}

// IsDisabled reports whether name is disabled globally or in guildID.
func (s *Storage) IsDisabled(_ context.Context, name, guildID string) (bool, error) {
	var record CommandRecord
	ok, err := s.ds.Get(commandKeyPrefix+name, &record)
	if err != nil {
		return false, fmt.Errorf("load command %s: %w", name, err)
	}
	if !ok {
		return false, nil
	}
	if record.GloballyDisabled {
		return true, nil
	}
	return guildID != "" && slices.Contains(record.DisabledGuilds, guildID), nil
}

// GloballyDisabled returns the names among names that are disabled
// everywhere. The bot uses it to restore registry flags at startup.
func (s *Storage) GloballyDisabled(names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		disabled, err := s.IsDisabled(context.Background(), name, "")
		if err != nil {
			return nil, err
		}
		if disabled {
			out = append(out, name)
		}
	}
	return out, nil
}

// CheckAndRecordUse implements core.CooldownStore on the persisted last-use
// timestamps.
func (s *Storage) CheckAndRecordUse(_ context.Context, userID string, cmd *core.Command) (time.Duration, error) {
	if cmd.Cooldown <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.loadCommandRecord(cmd.Name)
	if err != nil {
		return 0, err
	}

	now := s.now()
	if last, ok := record.LastUses[userID]; ok {
		if wait := last.Add(cmd.Cooldown).Sub(now); wait > 0 {
			return wait, nil
		}
	}

	record.LastUses[userID] = now
	return 0, s.saveCommandRecord(record)
}

// ClearExpiredCooldowns drops last-use entries whose cooldown has elapsed.
func (s *Storage) ClearExpiredCooldowns(cmds []*core.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, cmd := range cmds {
		record, err := s.loadCommandRecord(cmd.Name)
		if err != nil {
			return err
		}

		before := len(record.LastUses)
		maps.DeleteFunc(record.LastUses, func(_ string, last time.Time) bool {
			return !last.Add(cmd.Cooldown).After(now)
		})
		if len(record.LastUses) != before {
			if err := s.saveCommandRecord(record); err != nil {
				return err
			}
		}
	}
	return nil
}
