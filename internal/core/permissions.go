package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ────────────────────────────────────────────────────────────────
// PERMISSION NAME MAP
// ────────────────────────────────────────────────────────────────

var PermissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite:   "Create Instant Invite",
	discordgo.PermissionKickMembers:           "Kick Members",
	discordgo.PermissionBanMembers:            "Ban Members",
	discordgo.PermissionAdministrator:         "Administrator",
	discordgo.PermissionManageChannels:        "Manage Channels",
	discordgo.PermissionManageGuild:           "Manage Server",
	discordgo.PermissionAddReactions:          "Add Reactions",
	discordgo.PermissionViewAuditLogs:         "View Audit Logs",
	discordgo.PermissionViewChannel:           "View Channel",
	discordgo.PermissionSendMessages:          "Send Messages",
	discordgo.PermissionSendTTSMessages:       "Send TTS Messages",
	discordgo.PermissionManageMessages:        "Manage Messages",
	discordgo.PermissionEmbedLinks:            "Embed Links",
	discordgo.PermissionAttachFiles:           "Attach Files",
	discordgo.PermissionReadMessageHistory:    "Read Message History",
	discordgo.PermissionMentionEveryone:       "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:     "Use External Emojis",
	discordgo.PermissionManageThreads:         "Manage Threads",
	discordgo.PermissionCreatePublicThreads:   "Create Public Threads",
	discordgo.PermissionCreatePrivateThreads:  "Create Private Threads",
	discordgo.PermissionUseExternalStickers:   "Use External Stickers",
	discordgo.PermissionSendMessagesInThreads: "Send Messages in Threads",
	discordgo.PermissionVoicePrioritySpeaker:  "Priority Speaker",
	discordgo.PermissionVoiceStreamVideo:      "Stream Video",
	discordgo.PermissionVoiceConnect:          "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:            "Speak",
	discordgo.PermissionVoiceMuteMembers:      "Mute Members",
	discordgo.PermissionVoiceDeafenMembers:    "Deafen Members",
	discordgo.PermissionVoiceMoveMembers:      "Move Members",
	discordgo.PermissionVoiceUseVAD:           "Use Voice Activity Detection",
	discordgo.PermissionVoiceRequestToSpeak:   "Request to Speak",
	discordgo.PermissionChangeNickname:        "Change Nickname",
	discordgo.PermissionManageNicknames:       "Manage Nicknames",
	discordgo.PermissionManageRoles:           "Manage Roles",
	discordgo.PermissionManageWebhooks:        "Manage Webhooks",
	discordgo.PermissionManageEvents:          "Manage Events",
	discordgo.PermissionViewGuildInsights:     "View Guild Insights",
	discordgo.PermissionModerateMembers:       "Moderate Members",
}

// PermissionName returns the human-readable name of a permission bit.
func PermissionName(p int64) string {
	if name, ok := PermissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", p)
}

// PermissionByName looks a permission bit up by its display name, ignoring
// case.
func PermissionByName(name string) (int64, bool) {
	for bit, n := range PermissionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return bit, true
		}
	}
	return 0, false
}

// MissingPermissions lists, in declaration order, the names of every required
// permission the user lacks.
func MissingPermissions(ctx context.Context, checker PermissionChecker, userID, guildID, channelID string, required []int64) []string {
	var missing []string
	for _, p := range required {
		if !checker.HasPermission(ctx, userID, guildID, channelID, p) {
			missing = append(missing, PermissionName(p))
		}
	}
	return missing
}

// permissionList renders names as `A`, `B` with a pluralized noun.
func permissionList(names []string) string {
	noun := "permission"
	if len(names) > 1 {
		noun = "permissions"
	}
	return fmt.Sprintf("`%s` %s", strings.Join(names, "`, `"), noun)
}
