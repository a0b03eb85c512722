package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Permissions computes effective channel permissions from the state cache,
// falling back to the REST API. Administrators hold every permission.
type Permissions struct {
	s *discordgo.Session
	// state overrides s.State when set.
	state *discordgo.State
}

// NewStatePermissions returns a checker that never leaves st.
func NewStatePermissions(st *discordgo.State) *Permissions {
	return &Permissions{state: st}
}

func (p *Permissions) HasPermission(ctx context.Context, userID, guildID, channelID string, perm int64) bool {
	perms, ok := p.channelPermissions(ctx, userID, channelID)
	if !ok {
		return false
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&perm == perm
}

func (p *Permissions) channelPermissions(ctx context.Context, userID, channelID string) (int64, bool) {
	st := p.state
	if st == nil && p.s != nil {
		st = p.s.State
	}
	if st != nil {
		if perms, err := st.UserChannelPermissions(userID, channelID); err == nil {
			return perms, true
		}
	}
	if p.s == nil {
		return 0, false
	}
	perms, err := p.s.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, false
	}
	return perms, true
}
