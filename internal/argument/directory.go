package argument

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Kind is what a Discord identifier refers to.
type Kind int

const (
	KindNone Kind = iota
	KindCategory
	KindTextChannel
	KindVoiceChannel
	KindEmoji
	KindRole
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindTextChannel:
		return "textchannel"
	case KindVoiceChannel:
		return "voicechannel"
	case KindEmoji:
		return "emoji"
	case KindRole:
		return "role"
	case KindUser:
		return "user"
	default:
		return "none"
	}
}

// KindOfChannel maps a channel type to its Kind. Thread, forum and stage
// channels are not addressable by channel arguments.
func KindOfChannel(t discordgo.ChannelType) Kind {
	switch t {
	case discordgo.ChannelTypeGuildCategory:
		return KindCategory
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return KindTextChannel
	case discordgo.ChannelTypeGuildVoice:
		return KindVoiceChannel
	default:
		return KindNone
	}
}

// Directory resolves opaque identifiers to Discord objects. Implementations
// decide their own timeouts; errors make the argument invalid.
type Directory interface {
	// Classify reports what id refers to. Roles are only found when guildID
	// is set.
	Classify(ctx context.Context, id, guildID string) (Kind, error)
	Channel(ctx context.Context, id, guildID string) (*discordgo.Channel, error)
	Role(ctx context.Context, id, guildID string) (*discordgo.Role, error)
	User(ctx context.Context, id string) (*discordgo.User, error)
	// Member fails when the user is not part of the guild.
	Member(ctx context.Context, id, guildID string) (*discordgo.Member, error)
}
