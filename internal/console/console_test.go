package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/commandeer/internal/argument"
	"github.com/keshon/commandeer/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixtureYAML = `
guild:
  id: "100000000000000001"
  name: Sandbox
  owner: "400000000000000001"
bot:
  id: "400000000000000000"
  username: commandeer
author: "400000000000000002"
channels:
  - id: "200000000000000001"
    name: general
  - id: "200000000000000002"
    name: Lounge
    type: voice
roles:
  - id: "300000000000000001"
    name: mod
    permissions: [Manage Server, Kick Members]
users:
  - id: "400000000000000001"
    username: owner
    member: true
  - id: "400000000000000002"
    username: alice
    nick: al
    member: true
    roles: ["300000000000000001"]
  - id: "400000000000000003"
    username: bob
emojis:
  - id: "500000000000000001"
    name: blob
`

func loadFixture(t *testing.T) *Fixture {
	t.Helper()
	f, err := ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	return f
}

func TestParseFixtureDefaults(t *testing.T) {
	f := loadFixture(t)
	assert.Equal(t, "200000000000000001", f.Channel)
	assert.Equal(t, "alice", f.user("400000000000000002").Username)
	assert.Equal(t, "commandeer", f.user("400000000000000000").Username)
	assert.Nil(t, f.user("1"))
}

func TestParseFixtureErrors(t *testing.T) {
	_, err := ParseFixture([]byte("guild: [unclosed"))
	assert.Error(t, err)

	_, err = ParseFixture([]byte(`
guild: {id: "1"}
author: "9"
channels: [{id: "2", type: stage}]
roles: [{id: "3", permissions: [Fly]}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot.id is required")
	assert.Contains(t, err.Error(), "author 9 is not a listed user")
	assert.Contains(t, err.Error(), `unknown channel type "stage"`)
	assert.Contains(t, err.Error(), `unknown permission "Fly"`)
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, "Sandbox", f.Guild.Name)

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFixtureDirectory(t *testing.T) {
	c, err := New(loadFixture(t), &bytes.Buffer{})
	require.NoError(t, err)
	dir := c.Directory()
	ctx := context.Background()
	guild := c.fixture.Guild.ID

	kind, err := dir.Classify(ctx, "200000000000000002", guild)
	require.NoError(t, err)
	assert.Equal(t, argument.KindVoiceChannel, kind)

	kind, _ = dir.Classify(ctx, "500000000000000001", guild)
	assert.Equal(t, argument.KindEmoji, kind)

	kind, _ = dir.Classify(ctx, "300000000000000001", guild)
	assert.Equal(t, argument.KindRole, kind)

	kind, _ = dir.Classify(ctx, "400000000000000003", guild)
	assert.Equal(t, argument.KindUser, kind)

	m, err := dir.Member(ctx, "400000000000000002", guild)
	require.NoError(t, err)
	assert.Equal(t, "al", m.Nick)

	_, err = dir.Member(ctx, "400000000000000003", guild)
	assert.Error(t, err)

	perms := c.Permissions()
	assert.True(t, perms.HasPermission(ctx, "400000000000000002", guild, c.fixture.Channel, discordgo.PermissionKickMembers))
	assert.False(t, perms.HasPermission(ctx, "400000000000000002", guild, c.fixture.Channel, discordgo.PermissionBanMembers))
	assert.True(t, perms.HasPermission(ctx, "400000000000000001", guild, c.fixture.Channel, discordgo.PermissionBanMembers))
}

type echo struct {
	registry *core.Registry
	d        *core.Dispatcher
	calls    []*core.Invocation
}

func newEcho(t *testing.T, c *Console) *echo {
	t.Helper()
	e := &echo{registry: core.NewRegistry(zerolog.Nop())}
	require.NoError(t, e.registry.Register(&core.Command{
		Name: "echo",
		DM:   true,
		Run: func(ctx context.Context, inv *core.Invocation) error {
			e.calls = append(e.calls, inv)
			return inv.Reply(ctx, inv.Rest)
		},
	}))
	e.d = core.NewDispatcher(core.DispatcherOptions{
		BotID:        c.BotID(),
		GlobalPrefix: "!",
		Registry:     e.registry,
		Resolver:     argument.NewResolver(c.Directory()),
		Messenger:    c.Messenger(),
		Permissions:  c.Permissions(),
		Logger:       zerolog.Nop(),
	})
	return e
}

func TestConsoleHandle(t *testing.T) {
	var out bytes.Buffer
	c, err := New(loadFixture(t), &out)
	require.NoError(t, err)
	e := newEcho(t, c)
	ctx := context.Background()

	res, dispatched := c.Handle(ctx, e.d, "!echo hello  there")
	require.True(t, dispatched)
	assert.Equal(t, core.OutcomeExecuted, res.Outcome)
	assert.Contains(t, out.String(), "[#general] hello  there\n")
	require.Len(t, e.calls, 1)
	assert.Equal(t, "400000000000000002", e.calls[0].AuthorID)
	assert.Equal(t, "100000000000000001", e.calls[0].GuildID)

	_, dispatched = c.Handle(ctx, e.d, "/as 400000000000000003")
	assert.False(t, dispatched)
	_, dispatched = c.Handle(ctx, e.d, "/dm")
	assert.False(t, dispatched)

	out.Reset()
	c.Handle(ctx, e.d, "!echo psst")
	assert.Contains(t, out.String(), "[DM] psst\n")
	require.Len(t, e.calls, 2)
	assert.Equal(t, "400000000000000003", e.calls[1].AuthorID)
	assert.True(t, e.calls[1].InDM())
	assert.NotEqual(t, e.calls[0].MessageID, e.calls[1].MessageID)

	out.Reset()
	c.Handle(ctx, e.d, "/in 200000000000000002")
	c.Handle(ctx, e.d, "/whoami")
	assert.Equal(t, "400000000000000003 in #Lounge\n", out.String())

	out.Reset()
	c.Handle(ctx, e.d, "/as 1")
	c.Handle(ctx, e.d, "/in 1")
	assert.Equal(t, "unknown user\nunknown channel\n", out.String())

	res, dispatched = c.Handle(ctx, e.d, "/unknown")
	assert.True(t, dispatched)
	assert.Equal(t, core.OutcomeIgnored, res.Outcome)
}

func TestConsolePrefixInfo(t *testing.T) {
	var out bytes.Buffer
	c, err := New(loadFixture(t), &out)
	require.NoError(t, err)
	e := newEcho(t, c)

	res, _ := c.Handle(context.Background(), e.d, "<@400000000000000000>")
	assert.Equal(t, core.OutcomePrefixInfo, res.Outcome)
	assert.Contains(t, out.String(), "**My prefix here is `!`**")
	assert.Contains(t, out.String(), "set-prefix <your-prefix>")
}
