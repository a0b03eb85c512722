package command

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/console"
	"github.com/keshon/commandeer/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	guildID    = "100000000000000001"
	channelID  = "200000000000000001"
	botID      = "400000000000000000"
	ownerID    = "400000000000000001"
	modID      = "400000000000000002"
	userID     = "400000000000000003"
	strangerID = "400000000000000004"
)

const fixtureYAML = `
guild:
  id: "100000000000000001"
  name: Sandbox
  owner: "400000000000000009"
bot:
  id: "400000000000000000"
  username: commandeer
author: "400000000000000003"
channels:
  - id: "200000000000000001"
    name: general
roles:
  - id: "300000000000000001"
    name: member
  - id: "300000000000000002"
    name: mod
    permissions: [Manage Server]
users:
  - id: "400000000000000001"
    username: owner
    member: true
  - id: "400000000000000002"
    username: mod
    member: true
    roles: ["300000000000000002"]
  - id: "400000000000000003"
    username: user
    nick: tre
    member: true
    roles: ["300000000000000001"]
  - id: "400000000000000004"
    username: stranger
`

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) Send(_ context.Context, _, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, content)
	return nil
}

func (m *recordingMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

// memoryStore keeps prefixes and toggles in maps.
type memoryStore struct {
	mu       sync.Mutex
	prefixes map[string]string
	disabled map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{prefixes: map[string]string{}, disabled: map[string]bool{}}
}

func (s *memoryStore) Prefix(guildID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefixes[guildID]
}

func (s *memoryStore) SetPrefix(guildID, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes[guildID] = prefix
	return nil
}

func (s *memoryStore) DisableCommand(name, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[name+"@"+guildID] = true
	return nil
}

func (s *memoryStore) EnableCommand(name, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.disabled, name+"@"+guildID)
	return nil
}

func (s *memoryStore) IsDisabled(_ context.Context, name, guildID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled[name+"@"] || s.disabled[name+"@"+guildID], nil
}

type harness struct {
	t          *testing.T
	messenger  *recordingMessenger
	store      *memoryStore
	registry   *core.Registry
	dispatcher *core.Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f, err := console.ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	c, err := console.New(f, &strings.Builder{})
	require.NoError(t, err)

	h := &harness{
		t:         t,
		messenger: &recordingMessenger{},
		store:     newMemoryStore(),
		registry:  core.NewRegistry(zerolog.Nop()),
	}
	perms := c.Permissions()
	require.NoError(t, h.registry.Register(All(Deps{
		Registry: h.registry,
		Prefixes: h.store,
		Toggles:  h.store,
	})...))

	admins := core.NewAdmins(ownerID)
	h.dispatcher = core.NewDispatcher(core.DispatcherOptions{
		BotID:        botID,
		GlobalPrefix: "!",
		Prefixes:     h.store,
		IgnoreBots:   true,
		Admins:       admins,
		Registry:     h.registry,
		Pipeline: &core.Pipeline{
			Admins:      admins,
			Messenger:   h.messenger,
			Permissions: perms,
			Cooldowns:   core.NewMemoryCooldowns(),
			Disabled:    h.store,
			BotID:       botID,
			Logger:      zerolog.Nop(),
		},
		Resolver:    argument.NewResolver(c.Directory()),
		Messenger:   h.messenger,
		Permissions: perms,
		Logger:      zerolog.Nop(),
	})
	return h
}

func (h *harness) send(author, content string) core.Result {
	return h.dispatcher.Dispatch(context.Background(), core.Message{
		ID:        "1",
		AuthorID:  author,
		GuildID:   guildID,
		ChannelID: channelID,
		Content:   content,
	})
}

func (h *harness) sendDM(author, content string) core.Result {
	return h.dispatcher.Dispatch(context.Background(), core.Message{
		ID:        "1",
		AuthorID:  author,
		ChannelID: console.DMChannelID,
		Content:   content,
	})
}

func TestAllRegisters(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"commands", "help", "ping", "set-prefix", "whois"}, h.registry.Names())
}

func TestPing(t *testing.T) {
	h := newHarness(t)

	res := h.send(userID, "!ping")
	require.Equal(t, core.OutcomeExecuted, res.Outcome)
	assert.True(t, strings.HasPrefix(h.messenger.last(), "🏓 Pong!"))

	res = h.send(modID, "!pong")
	require.Equal(t, core.OutcomeExecuted, res.Outcome)
	assert.Equal(t, "ping", res.Invocation.Command.Name)

	res = h.send(userID, "!ping")
	assert.Equal(t, core.OutcomeBlocked, res.Outcome)
	assert.Contains(t, h.messenger.last(), "before using this command again")

	res = h.sendDM(strangerID, "!ping")
	assert.Equal(t, core.OutcomeExecuted, res.Outcome)
}

func TestHelpList(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, core.OutcomeExecuted, h.send(userID, "!help").Outcome)
	out := h.messenger.last()

	assert.NotContains(t, out, "`!commands`")
	order := []string{"`!help`", "`!whois`", "`!set-prefix`", "`!ping`"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, strings.Index(out, order[i-1]), strings.Index(out, order[i]), order[i])
	}

	require.Equal(t, core.OutcomeExecuted, h.send(ownerID, "!help").Outcome)
	assert.Contains(t, h.messenger.last(), "`!commands`")

	require.Equal(t, core.OutcomeExecuted, h.sendDM(userID, "!help").Outcome)
	dm := h.messenger.last()
	assert.Contains(t, dm, "`!ping`")
	assert.NotContains(t, dm, "`!whois`")
}

func TestHelpDetails(t *testing.T) {
	h := newHarness(t)

	h.send(userID, "!help ping")
	out := h.messenger.last()
	assert.Contains(t, out, "**ping** - Check that the bot is responding")
	assert.Contains(t, out, "Usage: `!ping`")
	assert.Contains(t, out, "Aliases: `pong`")
	assert.Contains(t, out, "Cooldown: 3 seconds")

	h.send(userID, "!help set-prefix")
	out = h.messenger.last()
	assert.Contains(t, out, "Usage: `!set-prefix <prefix>`")
	assert.Contains(t, out, "Requires: `Manage Server`")
	assert.Contains(t, out, "> `prefix` (string) - The new prefix")
	assert.Contains(t, out, "`!set-prefix ?`")

	h.send(userID, "!help commands")
	assert.Equal(t, "❌ Unknown command `commands`", h.messenger.last())

	h.send(ownerID, "!help cmd")
	out = h.messenger.last()
	assert.Contains(t, out, "**Subcommands**")
	assert.Contains(t, out, "`!commands disable <command> [scope]` - Disable a command")

	h.send(userID, "!help nope")
	assert.Equal(t, "❌ Unknown command `nope`", h.messenger.last())
}

func TestSetPrefix(t *testing.T) {
	h := newHarness(t)

	res := h.send(userID, "!set-prefix ?")
	assert.Equal(t, core.OutcomeBlocked, res.Outcome)
	assert.Equal(t, "❌ You need the `Manage Server` permission to run this command.", h.messenger.last())

	res = h.send(modID, "!set-prefix abcdef")
	require.Equal(t, core.OutcomeExecuted, res.Outcome)
	assert.Equal(t, "❌ The prefix must be at most 5 characters long", h.messenger.last())

	h.send(modID, "!set-prefix")
	assert.Equal(t, "❌ Missing argument prefix\nUsage: `!set-prefix <prefix>`", h.messenger.last())

	h.send(modID, "!set-prefix a b")
	assert.Equal(t, "❌ The prefix can't contain spaces", h.messenger.last())

	h.send(modID, "!set-prefix ?")
	assert.Equal(t, "✅ Prefix changed to `?`", h.messenger.last())
	assert.Equal(t, "?", h.store.Prefix(guildID))

	assert.Equal(t, core.OutcomeIgnored, h.send(userID, "!help").Outcome)
	assert.Equal(t, core.OutcomeExecuted, h.send(userID, "?help").Outcome)

	assert.Equal(t, core.OutcomeBlocked, h.sendDM(modID, "!set-prefix ?").Outcome)
}

func TestCommandsToggle(t *testing.T) {
	h := newHarness(t)

	res := h.send(userID, "!commands disable ping")
	assert.Equal(t, core.OutcomeBlocked, res.Outcome)

	h.send(ownerID, "!commands disable ping")
	assert.Equal(t, "✅ Command `ping` disabled in this server", h.messenger.last())
	assert.True(t, h.store.disabled["ping@"+guildID])

	res = h.send(userID, "!ping")
	assert.Equal(t, core.OutcomeBlocked, res.Outcome)
	assert.Equal(t, "❌ This command is disabled here.", h.messenger.last())

	h.send(ownerID, "!commands on pong")
	assert.Equal(t, "✅ Command `ping` enabled in this server", h.messenger.last())
	assert.Equal(t, core.OutcomeExecuted, h.send(userID, "!ping").Outcome)

	h.send(ownerID, "!commands off whois global")
	assert.Equal(t, "✅ Command `whois` disabled everywhere", h.messenger.last())
	whois, _ := h.registry.Resolve("whois")
	assert.True(t, whois.Disabled())
	assert.True(t, h.store.disabled["whois@"])

	h.send(ownerID, "!commands")
	assert.Contains(t, h.messenger.last(), "Disabled everywhere: `whois`")

	h.send(ownerID, "!commands enable whois global")
	assert.False(t, whois.Disabled())

	h.send(ownerID, "!commands disable commands")
	assert.Equal(t, "❌ `commands` can't be toggled", h.messenger.last())

	h.send(ownerID, "!commands disable nope")
	assert.Equal(t, "❌ Unknown command `nope`", h.messenger.last())

	h.send(ownerID, "!commands disable ping everywhere")
	assert.Equal(t, "❌ Wrong value provided for argument scope", h.messenger.last())
}

func TestWhois(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, core.OutcomeExecuted, h.send(modID, "!whois <@!"+userID+">").Outcome)
	assert.Equal(t, "**user** (`"+userID+"`)\nNickname: tre\nRoles: 1", h.messenger.last())

	h.send(modID, "!whois "+modID)
	assert.Equal(t, "**mod** (`"+modID+"`)\nRoles: 1", h.messenger.last())

	h.send(modID, "!whois <@"+strangerID+">")
	assert.Equal(t, "❌ That user is not a member of this server", h.messenger.last())

	h.send(modID, "!whois <#"+channelID+">")
	assert.Equal(t, "❌ That user is not a member of this server", h.messenger.last())

	res := h.sendDM(modID, "!whois "+userID)
	assert.Equal(t, core.OutcomeBlocked, res.Outcome)
	assert.Equal(t, "❌ This command can't be run in DMs. Please use it in a server.", h.messenger.last())
}
