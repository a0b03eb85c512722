package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/commandeer/internal/argument"
)

// Messenger delivers caller-visible text to a channel.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) error
}

// PermissionChecker answers capability questions for a principal in a guild
// channel.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, guildID, channelID string, perm int64) bool
}

// CooldownStore records command use and reports how long the caller still has
// to wait. A zero wait means the use was recorded.
type CooldownStore interface {
	CheckAndRecordUse(ctx context.Context, userID string, cmd *Command) (time.Duration, error)
}

// DisabledStore reports commands switched off globally or for one guild.
type DisabledStore interface {
	IsDisabled(ctx context.Context, name, guildID string) (bool, error)
}

// PrefixSource returns the command prefix in effect for a guild.
type PrefixSource interface {
	Prefix(guildID string) string
}

// Invocation is one dispatched command call. It is not retained after the
// handler returns.
type Invocation struct {
	ID        string
	AuthorID  string
	GuildID   string
	ChannelID string
	MessageID string
	Content   string
	Prefix    string
	// Received is when the dispatcher accepted the message.
	Received  time.Time

	// Name is the token that selected the command, lower-cased.
	Name string
	// Args are the whitespace-separated tokens after the name.
	Args []string
	// Rest is the raw text after the name with inner spacing and case kept.
	Rest string

	Command   *Command
	Admin     bool
	Resolver  *argument.Resolver
	Messenger Messenger
	Logger    zerolog.Logger
}

// InDM reports whether the invocation came from a direct message.
func (inv *Invocation) InDM() bool { return inv.GuildID == "" }

// Reply sends content to the invocation's channel.
func (inv *Invocation) Reply(ctx context.Context, content string) error {
	if inv.Messenger == nil {
		return nil
	}
	return inv.Messenger.Send(ctx, inv.ChannelID, content)
}

// Arguments resolves the command's declared arguments from Args.
func (inv *Invocation) Arguments(ctx context.Context) (argument.Values, error) {
	return inv.Resolve(ctx, inv.Command.Arguments, inv.Args)
}

// Resolve binds tokens to specs in the invocation's guild.
func (inv *Invocation) Resolve(ctx context.Context, specs []*argument.Spec, tokens []string) (argument.Values, error) {
	r := inv.Resolver
	if r == nil {
		r = argument.NewResolver(nil)
	}
	return r.ResolveAll(ctx, specs, tokens, inv.GuildID)
}
