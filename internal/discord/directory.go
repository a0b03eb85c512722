package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandeer/internal/argument"
)

var errNotInGuild = errors.New("not part of this guild")

// Directory resolves identifiers against the session state cache, falling
// back to the REST API for users, members, roles and channels. Classification
// only consults the cache for channels, emoji and roles.
type Directory struct {
	s *discordgo.Session
	// state overrides s.State when set.
	state *discordgo.State
}

// NewStateDirectory returns a Directory that never leaves st.
func NewStateDirectory(st *discordgo.State) *Directory {
	return &Directory{state: st}
}

func (d *Directory) cache() *discordgo.State {
	if d.state != nil {
		return d.state
	}
	if d.s != nil {
		return d.s.State
	}
	return nil
}

func (d *Directory) Classify(ctx context.Context, id, guildID string) (argument.Kind, error) {
	st := d.cache()
	if st != nil {
		if ch, err := st.Channel(id); err == nil {
			if ch.GuildID != "" && ch.GuildID != guildID {
				return argument.KindNone, nil
			}
			return argument.KindOfChannel(ch.Type), nil
		}
		if emojiCached(st, id) {
			return argument.KindEmoji, nil
		}
		if guildID != "" {
			if _, err := st.Role(guildID, id); err == nil {
				return argument.KindRole, nil
			}
		}
	}
	if _, err := d.User(ctx, id); err != nil {
		return argument.KindNone, nil
	}
	return argument.KindUser, nil
}

func emojiCached(st *discordgo.State, id string) bool {
	st.RLock()
	defer st.RUnlock()
	for _, g := range st.Guilds {
		for _, e := range g.Emojis {
			if e.ID == id {
				return true
			}
		}
	}
	return false
}

func (d *Directory) Channel(ctx context.Context, id, guildID string) (*discordgo.Channel, error) {
	var ch *discordgo.Channel
	var err error
	if st := d.cache(); st != nil {
		ch, err = st.Channel(id)
	}
	if ch == nil && d.s != nil {
		ch, err = d.s.Channel(id, discordgo.WithContext(ctx))
	}
	if ch == nil {
		if err == nil {
			err = discordgo.ErrStateNotFound
		}
		return nil, fmt.Errorf("channel %s: %w", id, err)
	}
	if ch.GuildID != guildID {
		return nil, fmt.Errorf("channel %s: %w", id, errNotInGuild)
	}
	return ch, nil
}

func (d *Directory) Role(ctx context.Context, id, guildID string) (*discordgo.Role, error) {
	if st := d.cache(); st != nil {
		if role, err := st.Role(guildID, id); err == nil {
			return role, nil
		}
	}
	if d.s == nil {
		return nil, fmt.Errorf("role %s: %w", id, discordgo.ErrStateNotFound)
	}
	roles, err := d.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch roles of %s: %w", guildID, err)
	}
	for _, role := range roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", id, errNotInGuild)
}

func (d *Directory) User(ctx context.Context, id string) (*discordgo.User, error) {
	if st := d.cache(); st != nil {
		if u := memberUserCached(st, id); u != nil {
			return u, nil
		}
	}
	if d.s == nil {
		return nil, fmt.Errorf("user %s: %w", id, discordgo.ErrStateNotFound)
	}
	u, err := d.s.User(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return u, nil
}

func memberUserCached(st *discordgo.State, id string) *discordgo.User {
	st.RLock()
	defer st.RUnlock()
	for _, g := range st.Guilds {
		for _, m := range g.Members {
			if m.User != nil && m.User.ID == id {
				return m.User
			}
		}
	}
	return nil
}

func (d *Directory) Member(ctx context.Context, id, guildID string) (*discordgo.Member, error) {
	if st := d.cache(); st != nil {
		if m, err := st.Member(guildID, id); err == nil {
			return m, nil
		}
	}
	if d.s == nil {
		return nil, fmt.Errorf("member %s: %w", id, errNotInGuild)
	}
	m, err := d.s.GuildMember(guildID, id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch member %s: %w", id, err)
	}
	return m, nil
}
