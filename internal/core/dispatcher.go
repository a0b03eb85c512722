package core

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keshon/commandeer/internal/argument"
)

// Message is an inbound chat message as seen by the dispatcher.
type Message struct {
	ID        string
	AuthorID  string
	AuthorBot bool
	// GuildID is empty for direct messages.
	GuildID   string
	ChannelID string
	Content   string
}

// Outcome classifies what Dispatch did with a message.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomePrefixInfo
	OutcomeUnknown
	OutcomeBlocked
	OutcomeExecuted
)

func (o Outcome) String() string {
	switch o {
	case OutcomePrefixInfo:
		return "prefix-info"
	case OutcomeUnknown:
		return "unknown"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeExecuted:
		return "executed"
	default:
		return "ignored"
	}
}

// Result reports the outcome of one Dispatch. Err carries the handler error
// for executed commands.
type Result struct {
	Outcome    Outcome
	Invocation *Invocation
	Err        error
}

// DispatcherOptions wires a Dispatcher.
type DispatcherOptions struct {
	BotID        string
	GlobalPrefix string
	// Prefixes overrides GlobalPrefix per guild when set.
	Prefixes PrefixSource
	// IgnoreBots drops messages from every bot account, not only our own.
	IgnoreBots bool
	// TestMode drops messages from everyone but the owner.
	TestMode bool

	Admins      Admins
	Registry    *Registry
	Pipeline    *Pipeline
	Resolver    *argument.Resolver
	Messenger   Messenger
	Permissions PermissionChecker
	// Middlewares wrap every handler outside the guard pipeline.
	Middlewares []Middleware
	Logger      zerolog.Logger
}

// Dispatcher turns inbound messages into command invocations.
type Dispatcher struct {
	opts   DispatcherOptions
	logger zerolog.Logger
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.GlobalPrefix == "" {
		opts.GlobalPrefix = "!"
	}
	return &Dispatcher{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Prefix returns the prefix in effect for guildID.
func (d *Dispatcher) Prefix(guildID string) string {
	if d.opts.Prefixes != nil && guildID != "" {
		if p := d.opts.Prefixes.Prefix(guildID); p != "" {
			return p
		}
	}
	return d.opts.GlobalPrefix
}

// Dispatch processes one message to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) Result {
	if msg.AuthorID == d.opts.BotID {
		return Result{Outcome: OutcomeIgnored}
	}
	if msg.AuthorBot && d.opts.IgnoreBots {
		return Result{Outcome: OutcomeIgnored}
	}
	if d.opts.TestMode && !d.opts.Admins.IsOwner(msg.AuthorID) {
		return Result{Outcome: OutcomeIgnored}
	}

	prefix := d.Prefix(msg.GuildID)
	if d.isBotMention(strings.TrimSpace(msg.Content)) {
		d.sendPrefixInfo(ctx, msg, prefix)
		return Result{Outcome: OutcomePrefixInfo}
	}

	content, ok := d.stripPrefix(msg.Content, prefix)
	if !ok {
		return Result{Outcome: OutcomeIgnored}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Result{Outcome: OutcomeIgnored}
	}

	tokens := strings.Fields(content)
	name := strings.ToLower(tokens[0])
	rest := strings.TrimLeftFunc(content[len(tokens[0]):], unicode.IsSpace)

	cmd, found := d.opts.Registry.Resolve(name)
	if !found {
		d.logger.Debug().Str("name", name).Str("user", msg.AuthorID).Msg("unknown command")
		return Result{Outcome: OutcomeUnknown}
	}

	inv := &Invocation{
		ID:        uuid.NewString(),
		AuthorID:  msg.AuthorID,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		Content:   msg.Content,
		Prefix:    prefix,
		Received:  time.Now(),
		Name:      name,
		Args:      tokens[1:],
		Rest:      rest,
		Command:   cmd,
		Admin:     d.opts.Admins.Contains(msg.AuthorID),
		Resolver:  d.opts.Resolver,
		Messenger: d.opts.Messenger,
	}
	inv.Logger = d.logger.With().Str("invocation", inv.ID).Str("command", cmd.Name).Logger()

	mws := make([]Middleware, 0, len(d.opts.Middlewares)+1)
	if d.opts.Pipeline != nil {
		mws = append(mws, d.opts.Pipeline.Middleware())
	}
	mws = append(mws, d.opts.Middlewares...)

	err := ApplyMiddlewares(cmd.Execute, mws...)(ctx, inv)
	if errors.Is(err, ErrBlocked) {
		return Result{Outcome: OutcomeBlocked, Invocation: inv}
	}
	if err != nil {
		inv.Logger.Error().Err(err).Msg("command failed")
	}
	return Result{Outcome: OutcomeExecuted, Invocation: inv, Err: err}
}

func (d *Dispatcher) mentions() (plain, nick string) {
	return "<@" + d.opts.BotID + ">", "<@!" + d.opts.BotID + ">"
}

func (d *Dispatcher) isBotMention(content string) bool {
	if d.opts.BotID == "" {
		return false
	}
	plain, nick := d.mentions()
	return content == plain || content == nick
}

// stripPrefix removes the configured prefix (case-insensitively), then the
// nickname mention form, then the plain mention form.
func (d *Dispatcher) stripPrefix(content, prefix string) (string, bool) {
	if prefix != "" && len(content) >= len(prefix) && strings.EqualFold(content[:len(prefix)], prefix) {
		return content[len(prefix):], true
	}
	if d.opts.BotID == "" {
		return "", false
	}
	plain, nick := d.mentions()
	if rest, ok := strings.CutPrefix(content, nick); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(content, plain); ok {
		return rest, true
	}
	return "", false
}

func (d *Dispatcher) sendPrefixInfo(ctx context.Context, msg Message, prefix string) {
	if d.opts.Messenger == nil {
		return
	}
	reply := "**My prefix here is `" + prefix + "`**"
	if CanManageGuild(ctx, d.opts.Permissions, msg.AuthorID, msg.GuildID, msg.ChannelID) {
		reply += "\n> You can change it with `" + prefix + "set-prefix <your-prefix>`"
	}
	if err := d.opts.Messenger.Send(ctx, msg.ChannelID, reply); err != nil {
		d.logger.Warn().Err(err).Str("channel", msg.ChannelID).Msg("send prefix info")
	}
}
