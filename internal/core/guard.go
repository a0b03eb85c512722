package core

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/commandeer/pkg/duration"
)

// Verdict is the outcome of one guard stage.
type Verdict int

const (
	// Pass hands the invocation to the next stage.
	Pass Verdict = iota
	// Block stops the invocation.
	Block
	// Bypass skips every remaining stage.
	Bypass
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Block:
		return "block"
	case Bypass:
		return "bypass"
	default:
		return "unknown"
	}
}

const (
	noticeDM       = "This command can't be run in DMs. Please use it in a server."
	noticeDisabled = "This command is disabled here."
	noticePrefix   = "❌ "
)

// Stage is one named check. A blocking stage may return a notice for the
// caller; an empty notice blocks silently.
type Stage struct {
	Name  string
	Check func(ctx context.Context, inv *Invocation) (Verdict, string)
}

// Pipeline runs the guard stages in a fixed order before a handler.
type Pipeline struct {
	Admins      Admins
	Messenger   Messenger
	Permissions PermissionChecker
	Cooldowns   CooldownStore
	Disabled    DisabledStore
	BotID       string
	// AdminBypassesDM lets admins run guild-only commands in DMs.
	AdminBypassesDM bool
	Logger          zerolog.Logger
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		{Name: "scope", Check: p.checkScope},
		{Name: "admin", Check: p.checkAdmin},
		{Name: "disabled", Check: p.checkDisabled},
		{Name: "admin-only", Check: p.checkAdminOnly},
		{Name: "cooldown", Check: p.checkCooldown},
		{Name: "caller-permissions", Check: p.checkCallerPermissions},
		{Name: "bot-permissions", Check: p.checkBotPermissions},
	}
}

// Allow runs every stage and reports whether the handler may run. Notices are
// delivered before it returns; delivery failures are only logged.
func (p *Pipeline) Allow(ctx context.Context, inv *Invocation) bool {
	for _, stage := range p.Stages() {
		verdict, notice := stage.Check(ctx, inv)
		switch verdict {
		case Bypass:
			p.Logger.Debug().Str("invocation", inv.ID).Str("stage", stage.Name).Msg("guard bypassed")
			return true
		case Block:
			p.Logger.Debug().Str("invocation", inv.ID).Str("stage", stage.Name).Msg("guard blocked")
			p.notify(ctx, inv, notice)
			return false
		}
	}
	return true
}

// Middleware exposes the pipeline as a handler wrapper returning ErrBlocked
// on rejection.
func (p *Pipeline) Middleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			if !p.Allow(ctx, inv) {
				return ErrBlocked
			}
			return next(ctx, inv)
		}
	}
}

func (p *Pipeline) notify(ctx context.Context, inv *Invocation, notice string) {
	if notice == "" || p.Messenger == nil {
		return
	}
	if err := p.Messenger.Send(ctx, inv.ChannelID, noticePrefix+notice); err != nil {
		p.Logger.Warn().Err(err).Str("invocation", inv.ID).Msg("send guard notice")
	}
}

func (p *Pipeline) checkScope(_ context.Context, inv *Invocation) (Verdict, string) {
	if !inv.InDM() || inv.Command.DM {
		return Pass, ""
	}
	if p.AdminBypassesDM && p.Admins.Contains(inv.AuthorID) {
		return Pass, ""
	}
	return Block, noticeDM
}

func (p *Pipeline) checkAdmin(_ context.Context, inv *Invocation) (Verdict, string) {
	if p.Admins.Contains(inv.AuthorID) {
		return Bypass, ""
	}
	return Pass, ""
}

func (p *Pipeline) checkDisabled(ctx context.Context, inv *Invocation) (Verdict, string) {
	cmd := inv.Command
	disabled := cmd.Disabled()
	if !disabled && p.Disabled != nil {
		var err error
		disabled, err = p.Disabled.IsDisabled(ctx, cmd.Name, inv.GuildID)
		if err != nil {
			p.Logger.Warn().Err(err).Str("command", cmd.Name).Msg("read disabled state")
			return Pass, ""
		}
	}
	if !disabled {
		return Pass, ""
	}
	return Block, p.unlessSilent(cmd, noticeDisabled)
}

func (p *Pipeline) checkAdminOnly(_ context.Context, inv *Invocation) (Verdict, string) {
	if inv.Command.Admin {
		return Block, ""
	}
	return Pass, ""
}

func (p *Pipeline) checkCooldown(ctx context.Context, inv *Invocation) (Verdict, string) {
	cmd := inv.Command
	if cmd.Cooldown <= 0 || p.Cooldowns == nil {
		return Pass, ""
	}
	wait, err := p.Cooldowns.CheckAndRecordUse(ctx, inv.AuthorID, cmd)
	if err != nil {
		p.Logger.Warn().Err(err).Str("command", cmd.Name).Msg("check cooldown")
		return Pass, ""
	}
	if wait <= 0 {
		return Pass, ""
	}
	return Block, p.unlessSilent(cmd, "Please wait "+duration.FormatDuration(wait, true)+" before using this command again.")
}

func (p *Pipeline) checkCallerPermissions(ctx context.Context, inv *Invocation) (Verdict, string) {
	cmd := inv.Command
	if inv.InDM() || p.Permissions == nil || len(cmd.CallerPermissions) == 0 {
		return Pass, ""
	}
	missing := MissingPermissions(ctx, p.Permissions, inv.AuthorID, inv.GuildID, inv.ChannelID, cmd.CallerPermissions)
	if len(missing) == 0 {
		return Pass, ""
	}
	return Block, p.unlessSilent(cmd, "You need the "+permissionList(missing)+" to run this command.")
}

func (p *Pipeline) checkBotPermissions(ctx context.Context, inv *Invocation) (Verdict, string) {
	cmd := inv.Command
	if inv.InDM() || p.Permissions == nil || p.BotID == "" || len(cmd.BotPermissions) == 0 {
		return Pass, ""
	}
	missing := MissingPermissions(ctx, p.Permissions, p.BotID, inv.GuildID, inv.ChannelID, cmd.BotPermissions)
	if len(missing) == 0 {
		return Pass, ""
	}
	return Block, p.unlessSilent(cmd, "I need the "+permissionList(missing)+" to run this command.")
}

func (p *Pipeline) unlessSilent(cmd *Command, notice string) string {
	if cmd.IsSilent() {
		return ""
	}
	return notice
}

// CanManageGuild reports whether userID holds Manage Server in the channel.
func CanManageGuild(ctx context.Context, checker PermissionChecker, userID, guildID, channelID string) bool {
	if checker == nil || guildID == "" {
		return false
	}
	return checker.HasPermission(ctx, userID, guildID, channelID, discordgo.PermissionManageGuild)
}
