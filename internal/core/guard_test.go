package core

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(m Messenger, perms PermissionChecker) *Pipeline {
	return &Pipeline{
		Admins:      NewAdmins(ownerID, adminID),
		Messenger:   m,
		Permissions: perms,
		BotID:       botID,
		Logger:      zerolog.Nop(),
	}
}

func invocationFor(cmd *Command, author, guild string) *Invocation {
	return &Invocation{ID: "inv", AuthorID: author, GuildID: guild, ChannelID: chanID, Command: cmd}
}

func TestGuardDMRestrictionAppliesToAdmins(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	cmd := &Command{Name: "ban", Run: nopHandler}

	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, "")))
	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, adminID, "")))
	assert.Equal(t, []string{
		"❌ This command can't be run in DMs. Please use it in a server.",
		"❌ This command can't be run in DMs. Please use it in a server.",
	}, m.messages())
}

func TestGuardAdminBypassesDMWhenConfigured(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	p.AdminBypassesDM = true
	cmd := &Command{Name: "ban", Run: nopHandler}

	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, adminID, "")))
	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, "")))
	assert.Len(t, m.messages(), 1)
}

func TestGuardDMAllowedCommand(t *testing.T) {
	p := newPipeline(&recordingMessenger{}, permissionTable{})
	cmd := &Command{Name: "ping", DM: true, CallerPermissions: []int64{discordgo.PermissionManageMessages}, Run: nopHandler}
	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, userID, "")))
}

func TestGuardAdminOnlyIsSilent(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	cmd := &Command{Name: "eval", Admin: true, Hidden: Flag(false), Silent: Flag(false), Run: nopHandler}

	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.Empty(t, m.messages())

	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, ownerID, guildID)))
	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, adminID, guildID)))
}

func TestGuardAdminBypassesPermissions(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	cmd := &Command{
		Name:              "purge",
		CallerPermissions: []int64{discordgo.PermissionManageMessages},
		BotPermissions:    []int64{discordgo.PermissionManageMessages},
		Run:               nopHandler,
	}
	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, adminID, guildID)))
	assert.Empty(t, m.messages())
}

func TestGuardCallerPermissionsListsEveryMissing(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{
		userID: discordgo.PermissionKickMembers,
		botID:  discordgo.PermissionAdministrator | discordgo.PermissionManageRoles,
	})
	cmd := &Command{
		Name: "mod",
		CallerPermissions: []int64{
			discordgo.PermissionManageRoles,
			discordgo.PermissionKickMembers,
			discordgo.PermissionBanMembers,
		},
		Run: nopHandler,
	}

	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.Equal(t, []string{"❌ You need the `Manage Roles`, `Ban Members` permissions to run this command."}, m.messages())
}

func TestGuardBotPermissions(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{userID: discordgo.PermissionManageMessages})
	cmd := &Command{
		Name:              "purge",
		CallerPermissions: []int64{discordgo.PermissionManageMessages},
		BotPermissions:    []int64{discordgo.PermissionManageMessages},
		Run:               nopHandler,
	}

	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.Equal(t, []string{"❌ I need the `Manage Messages` permission to run this command."}, m.messages())
}

func TestGuardSilentSuppressesNotices(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	cmd := &Command{
		Name:              "purge",
		Silent:            Flag(true),
		CallerPermissions: []int64{discordgo.PermissionManageMessages},
		Run:               nopHandler,
	}

	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.Empty(t, m.messages())
}

func TestGuardUnknownPermissionName(t *testing.T) {
	assert.Equal(t, "0x8000000000000", PermissionName(1<<51))
	assert.Equal(t, "Manage Server", PermissionName(discordgo.PermissionManageGuild))

	bit, ok := PermissionByName(" manage server ")
	assert.True(t, ok)
	assert.Equal(t, int64(discordgo.PermissionManageGuild), bit)
	_, ok = PermissionByName("Fly")
	assert.False(t, ok)
}

func TestGuardDisabled(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	p.Disabled = staticDisabled{"ping@" + guildID: true}
	cmd := &Command{Name: "ping", Run: nopHandler}

	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, userID, "301")))
	assert.Equal(t, []string{"❌ This command is disabled here."}, m.messages())

	cmd.disabled.Store(true)
	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, "301")))
	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, adminID, "301")))
}

func TestGuardCooldown(t *testing.T) {
	m := &recordingMessenger{}
	p := newPipeline(m, permissionTable{})
	cooldowns := NewMemoryCooldowns()
	base := time.Unix(1_700_000_000, 0)
	cooldowns.now = func() time.Time { return base }
	p.Cooldowns = cooldowns
	cmd := &Command{Name: "daily", Cooldown: time.Hour, Run: nopHandler}

	require.True(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.False(t, p.Allow(context.Background(), invocationFor(cmd, userID, guildID)))
	assert.Equal(t, []string{"❌ Please wait **1** hour before using this command again."}, m.messages())

	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, "201", guildID)))
	assert.True(t, p.Allow(context.Background(), invocationFor(cmd, adminID, guildID)))
}

func TestGuardStageOrder(t *testing.T) {
	p := newPipeline(nil, nil)
	var names []string
	for _, s := range p.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"scope", "admin", "disabled", "admin-only", "cooldown", "caller-permissions", "bot-permissions",
	}, names)
}

func TestGuardMiddleware(t *testing.T) {
	p := newPipeline(&recordingMessenger{}, permissionTable{})
	ran := false
	h := p.Middleware()(func(context.Context, *Invocation) error {
		ran = true
		return nil
	})

	cmd := &Command{Name: "eval", Admin: true, Run: nopHandler}
	assert.ErrorIs(t, h(context.Background(), invocationFor(cmd, userID, guildID)), ErrBlocked)
	assert.False(t, ran)

	require.NoError(t, h(context.Background(), invocationFor(cmd, ownerID, guildID)))
	assert.True(t, ran)
}
