// Package console runs the dispatcher against a yaml-described guild from a
// terminal, without a gateway connection.
package console

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/yaml.v3"

	"github.com/keshon/commandeer/internal/core"
)

const (
	// DMChannelID is the channel console messages use while in DM mode.
	DMChannelID = "dm"

	outsideGuildID = "0"
)

var defaultEveryone = []string{"View Channel", "Send Messages"}

type Fixture struct {
	Guild    FixtureGuild     `yaml:"guild"`
	Bot      FixtureUser      `yaml:"bot"`
	Author   string           `yaml:"author"`
	Channel  string           `yaml:"channel"`
	Channels []FixtureChannel `yaml:"channels"`
	Roles    []FixtureRole    `yaml:"roles"`
	Users    []FixtureUser    `yaml:"users"`
	Emojis   []FixtureEmoji   `yaml:"emojis"`
}

type FixtureGuild struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
	// Everyone lists the permissions of the implicit @everyone role.
	Everyone []string `yaml:"everyone"`
}

type FixtureChannel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Type is text, news, voice or category.
	Type string `yaml:"type"`
}

type FixtureRole struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type FixtureUser struct {
	ID       string   `yaml:"id"`
	Username string   `yaml:"username"`
	Bot      bool     `yaml:"bot"`
	Member   bool     `yaml:"member"`
	Nick     string   `yaml:"nick"`
	Roles    []string `yaml:"roles"`
}

type FixtureEmoji struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	var errs []error
	if f.Guild.ID == "" || f.Guild.ID == outsideGuildID {
		errs = append(errs, errors.New("guild.id is required"))
	}
	if f.Bot.ID == "" {
		errs = append(errs, errors.New("bot.id is required"))
	}
	if f.Author == "" {
		errs = append(errs, errors.New("author is required"))
	} else if f.user(f.Author) == nil {
		errs = append(errs, fmt.Errorf("author %s is not a listed user", f.Author))
	}
	if f.Channel == "" && len(f.Channels) > 0 {
		f.Channel = f.Channels[0].ID
	}
	for _, c := range f.Channels {
		if _, err := channelType(c.Type); err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", c.ID, err))
		}
	}
	for _, r := range f.Roles {
		if _, err := permissionBits(r.Permissions); err != nil {
			errs = append(errs, fmt.Errorf("role %s: %w", r.ID, err))
		}
	}
	if _, err := permissionBits(f.Guild.Everyone); err != nil {
		errs = append(errs, fmt.Errorf("guild.everyone: %w", err))
	}
	return errors.Join(errs...)
}

func (f *Fixture) user(id string) *FixtureUser {
	if f.Bot.ID == id {
		return &f.Bot
	}
	for i := range f.Users {
		if f.Users[i].ID == id {
			return &f.Users[i]
		}
	}
	return nil
}

func channelType(name string) (discordgo.ChannelType, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return discordgo.ChannelTypeGuildText, nil
	case "news":
		return discordgo.ChannelTypeGuildNews, nil
	case "voice":
		return discordgo.ChannelTypeGuildVoice, nil
	case "category":
		return discordgo.ChannelTypeGuildCategory, nil
	default:
		return 0, fmt.Errorf("unknown channel type %q", name)
	}
}

func permissionBits(names []string) (int64, error) {
	var bits int64
	for _, name := range names {
		bit, ok := core.PermissionByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown permission %q", name)
		}
		bits |= bit
	}
	return bits, nil
}

// State builds a discordgo state cache holding the fixture's guild. The bot
// is always a member.
func (f *Fixture) State() (*discordgo.State, error) {
	everyone := f.Guild.Everyone
	if everyone == nil {
		everyone = defaultEveryone
	}
	everyoneBits, err := permissionBits(everyone)
	if err != nil {
		return nil, err
	}

	g := &discordgo.Guild{
		ID:      f.Guild.ID,
		Name:    f.Guild.Name,
		OwnerID: f.Guild.Owner,
		Roles:   []*discordgo.Role{{ID: f.Guild.ID, Name: "@everyone", Permissions: everyoneBits}},
	}
	for _, c := range f.Channels {
		t, err := channelType(c.Type)
		if err != nil {
			return nil, err
		}
		g.Channels = append(g.Channels, &discordgo.Channel{ID: c.ID, GuildID: g.ID, Name: c.Name, Type: t})
	}
	for _, r := range f.Roles {
		bits, err := permissionBits(r.Permissions)
		if err != nil {
			return nil, err
		}
		g.Roles = append(g.Roles, &discordgo.Role{ID: r.ID, Name: r.Name, Permissions: bits})
	}
	// Users outside the guild are parked in a placeholder guild so user
	// lookups still find them while member lookups do not.
	outside := &discordgo.Guild{ID: outsideGuildID, Name: "outside"}
	bot := f.Bot
	bot.Bot, bot.Member = true, true
	for _, u := range append([]FixtureUser{bot}, f.Users...) {
		m := &discordgo.Member{
			GuildID: g.ID,
			Nick:    u.Nick,
			Roles:   u.Roles,
			User:    &discordgo.User{ID: u.ID, Username: u.Username, Bot: u.Bot},
		}
		if !u.Member {
			m.GuildID, m.Nick, m.Roles = outside.ID, "", nil
			outside.Members = append(outside.Members, m)
			continue
		}
		g.Members = append(g.Members, m)
	}
	for _, e := range f.Emojis {
		g.Emojis = append(g.Emojis, &discordgo.Emoji{ID: e.ID, Name: e.Name})
	}

	st := discordgo.NewState()
	for _, guild := range []*discordgo.Guild{g, outside} {
		if err := st.GuildAdd(guild); err != nil {
			return nil, fmt.Errorf("load fixture guild %s: %w", guild.ID, err)
		}
	}
	return st, nil
}
