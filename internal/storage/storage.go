// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const (
	commandKeyPrefix = "command:"
	guildKeyPrefix   = "guild:"
)

// Storage persists per-command and per-guild state in a JSON datastore.
// Records are read into fresh values and written back with Set, so nothing
// returned to callers is shared with the store.
type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc
	mu     sync.Mutex
	now    func() time.Time
}

// CommandRecord is the persisted state of one command.
type CommandRecord struct {
	Name             string               `json:"name"`
	LastUses         map[string]time.Time `json:"last_uses"` // key = userID
	GloballyDisabled bool                 `json:"globally_disabled"`
	DisabledGuilds   []string             `json:"disabled_guilds"`
}

// GuildRecord is the persisted configuration of one guild.
type GuildRecord struct {
	Prefix string `json:"prefix,omitempty"`
}

// New opens the datastore at filePath. Its autosave loop stops when ctx is
// done or Close is called.
func New(ctx context.Context, filePath string, opts ...datastore.Option) (*Storage, error) {
	ctx, cancel := context.WithCancel(ctx)
	ds, err := datastore.New(ctx, filePath, opts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return &Storage{ds: ds, cancel: cancel, now: time.Now}, nil
}

// Close stops autosave and flushes the store to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

// loadCommandRecord must be called with s.mu held. A missing record is
// returned empty.
func (s *Storage) loadCommandRecord(name string) (CommandRecord, error) {
	var record CommandRecord
	if _, err := s.ds.Get(commandKeyPrefix+name, &record); err != nil {
		return CommandRecord{}, fmt.Errorf("load command %s: %w", name, err)
	}
	if record.LastUses == nil {
		record.LastUses = map[string]time.Time{}
	}
	if record.Name == "" {
		record.Name = name
	}
	return record, nil
}

func (s *Storage) saveCommandRecord(record CommandRecord) error {
	if err := s.ds.Set(commandKeyPrefix+record.Name, record); err != nil {
		return fmt.Errorf("save command %s: %w", record.Name, err)
	}
	return nil
}

// CommandRecord returns the stored state for name.
func (s *Storage) CommandRecord(name string) (CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCommandRecord(name)
}

// Prefix returns the guild's custom prefix, or "" when none is set.
func (s *Storage) Prefix(guildID string) string {
	var record GuildRecord
	if ok, err := s.ds.Get(guildKeyPrefix+guildID, &record); !ok || err != nil {
		return ""
	}
	return record.Prefix
}

// SetPrefix stores a custom prefix for the guild. An empty prefix resets it.
func (s *Storage) SetPrefix(guildID, prefix string) error {
	if err := s.ds.Set(guildKeyPrefix+guildID, GuildRecord{Prefix: prefix}); err != nil {
		return fmt.Errorf("save prefix for %s: %w", guildID, err)
	}
	return nil
}
