package argument

import "regexp"

// Mention patterns accept either the wrapped form (<#id>, <@&id>, <@id>,
// <@!id>) or a bare snowflake.
var (
	channelMention = regexp.MustCompile(`^(?:<#)?(\d{17,19})>?$`)
	emojiMention   = regexp.MustCompile(`^<a?:(\w+):(\d{17,19})>$`)
	roleMention    = regexp.MustCompile(`^(?:<@&)?(\d{17,19})>?$`)
	userMention    = regexp.MustCompile(`^(?:<@!?)?(\d{17,19})>?$`)
)

func mentionID(re *regexp.Regexp, input string) (string, bool) {
	m := re.FindStringSubmatch(input)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ChannelID extracts the snowflake from a channel mention.
func ChannelID(input string) (string, bool) { return mentionID(channelMention, input) }

// RoleID extracts the snowflake from a role mention.
func RoleID(input string) (string, bool) { return mentionID(roleMention, input) }

// UserID extracts the snowflake from a user mention, with or without the
// nickname marker.
func UserID(input string) (string, bool) { return mentionID(userMention, input) }
