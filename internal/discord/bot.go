// Package discord connects the command core to a Discord gateway session.
package discord

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/commandeer/internal/core"
)

// DispatcherFactory builds the dispatcher once the bot knows its own user ID.
type DispatcherFactory func(botID string) *core.Dispatcher

// Bot is a Discord bot
type Bot struct {
	dg         *discordgo.Session
	logger     zerolog.Logger
	build      DispatcherFactory
	dispatcher atomic.Pointer[core.Dispatcher]

	directory   *Directory
	messenger   *Messenger
	permissions *Permissions
}

// New creates a bot session for token without connecting it.
func New(token string, logger zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	b := &Bot{
		dg:          dg,
		logger:      logger.With().Str("component", "discord").Logger(),
		directory:   &Directory{s: dg},
		messenger:   newMessenger(dg),
		permissions: &Permissions{s: dg},
	}
	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

func (b *Bot) Directory() *Directory     { return b.directory }
func (b *Bot) Messenger() *Messenger     { return b.messenger }
func (b *Bot) Permissions() *Permissions { return b.permissions }

// Run connects to the gateway and serves messages until ctx is cancelled.
// Messages that arrive before the ready event are dropped.
func (b *Bot) Run(ctx context.Context, build DispatcherFactory) error {
	b.build = build
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.logger.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildEmojis |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		b.logger.Warn().Msg("ready event without user")
		return
	}
	if b.build != nil {
		b.dispatcher.Store(b.build(r.User.ID))
	}
	b.logger.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("✅ Discord bot is running")
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	d := b.dispatcher.Load()
	if d == nil || m.Author == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := d.Dispatch(ctx, toMessage(m.Message))
	if res.Outcome == core.OutcomeExecuted && res.Err != nil {
		b.logger.Debug().Err(res.Err).Str("message", m.ID).Msg("handler returned error")
	}
}

func toMessage(m *discordgo.Message) core.Message {
	msg := core.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}
