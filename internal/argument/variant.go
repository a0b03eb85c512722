package argument

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/keshon/commandeer/pkg/duration"
)

var errNoDirectory = errors.New("argument: no directory configured")

// variant is the validation and coercion pair for one Type. Guild presence for
// scope-bound types is checked by the Resolver before a variant runs.
type variant interface {
	valid(ctx context.Context, r *Resolver, s *Spec, input, guildID string) bool
	coerce(ctx context.Context, r *Resolver, s *Spec, input, guildID string) (any, error)
}

func (t Type) variant() variant {
	switch t {
	case TypeBoolean:
		return booleanVariant{}
	case TypeNumber:
		return numberVariant{}
	case TypeDuration:
		return durationVariant{}
	case TypeString:
		return textVariant{bounded: true}
	case TypeCustom:
		return textVariant{}
	case TypeJSON:
		return jsonVariant{}
	case TypeEmoji:
		return emojiVariant{}
	case TypeCategory:
		return channelVariant{accept: []Kind{KindCategory}}
	case TypeTextChannel:
		return channelVariant{accept: []Kind{KindTextChannel}}
	case TypeVoiceChannel:
		return channelVariant{accept: []Kind{KindVoiceChannel}}
	case TypeChannel:
		return channelVariant{accept: []Kind{KindCategory, KindTextChannel, KindVoiceChannel}}
	case TypeUser:
		return personVariant{}
	case TypeMember:
		return personVariant{member: true}
	case TypeRole:
		return roleVariant{}
	default:
		return nil
	}
}

var (
	truthy = []string{"on", "true", "yes", "1"}
	falsy  = []string{"off", "false", "no", "0"}
)

type booleanVariant struct{}

func (booleanVariant) valid(_ context.Context, _ *Resolver, _ *Spec, input, _ string) bool {
	v := strings.ToLower(input)
	return contains(truthy, v) || contains(falsy, v)
}

func (booleanVariant) coerce(_ context.Context, _ *Resolver, _ *Spec, input, _ string) (any, error) {
	return contains(truthy, strings.ToLower(input)), nil
}

type numberVariant struct{}

func parseNumber(input string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (numberVariant) valid(_ context.Context, _ *Resolver, s *Spec, input, _ string) bool {
	v, ok := parseNumber(input)
	return ok && s.inBounds(v)
}

func (numberVariant) coerce(_ context.Context, _ *Resolver, _ *Spec, input, _ string) (any, error) {
	v, ok := parseNumber(input)
	if !ok {
		return nil, fmt.Errorf("coerce number: %q is not a finite number", input)
	}
	return v, nil
}

type durationVariant struct{}

func (durationVariant) valid(_ context.Context, _ *Resolver, s *Spec, input, _ string) bool {
	millis, ok := duration.Parse(input)
	return ok && s.inBounds(float64(millis))
}

func (durationVariant) coerce(_ context.Context, _ *Resolver, _ *Spec, input, _ string) (any, error) {
	millis, ok := duration.Parse(input)
	if !ok {
		return nil, fmt.Errorf("coerce duration: %q is not a duration", input)
	}
	return millis, nil
}

// textVariant covers string and custom arguments; only strings are bounded.
type textVariant struct {
	bounded bool
}

func (v textVariant) valid(_ context.Context, _ *Resolver, s *Spec, input, _ string) bool {
	if !v.bounded {
		return true
	}
	return s.inBounds(float64(utf8.RuneCountInString(input)))
}

func (textVariant) coerce(_ context.Context, _ *Resolver, s *Spec, input, _ string) (any, error) {
	if s.CaseSensitive {
		return input, nil
	}
	return strings.ToLower(input), nil
}

type jsonVariant struct{}

func (jsonVariant) valid(_ context.Context, _ *Resolver, _ *Spec, input, _ string) bool {
	return gjson.Valid(input)
}

func (jsonVariant) coerce(_ context.Context, _ *Resolver, _ *Spec, input, _ string) (any, error) {
	if !gjson.Valid(input) {
		return nil, fmt.Errorf("coerce json: malformed input")
	}
	return gjson.Parse(input).Value(), nil
}

type emojiVariant struct{}

func (emojiVariant) valid(_ context.Context, _ *Resolver, _ *Spec, input, _ string) bool {
	return IsEmoji(input)
}

func (emojiVariant) coerce(_ context.Context, _ *Resolver, _ *Spec, input, _ string) (any, error) {
	return input, nil
}

type channelVariant struct {
	accept []Kind
}

func (v channelVariant) valid(ctx context.Context, r *Resolver, _ *Spec, input, guildID string) bool {
	id, ok := ChannelID(input)
	if !ok || r.dir == nil {
		return false
	}
	kind, err := r.dir.Classify(ctx, id, guildID)
	if err != nil {
		return false
	}
	return contains(v.accept, kind)
}

func (channelVariant) coerce(ctx context.Context, r *Resolver, _ *Spec, input, guildID string) (any, error) {
	id, ok := ChannelID(input)
	if !ok {
		return nil, fmt.Errorf("coerce channel: %q is not a channel mention", input)
	}
	if r.dir == nil {
		return nil, errNoDirectory
	}
	return r.dir.Channel(ctx, id, guildID)
}

// personVariant covers user and member arguments. Members must additionally
// belong to the guild.
type personVariant struct {
	member bool
}

func (v personVariant) valid(ctx context.Context, r *Resolver, _ *Spec, input, guildID string) bool {
	id, ok := UserID(input)
	if !ok || r.dir == nil {
		return false
	}
	kind, err := r.dir.Classify(ctx, id, guildID)
	if err != nil || kind != KindUser {
		return false
	}
	if v.member {
		if _, err := r.dir.Member(ctx, id, guildID); err != nil {
			return false
		}
	}
	return true
}

func (v personVariant) coerce(ctx context.Context, r *Resolver, _ *Spec, input, guildID string) (any, error) {
	id, ok := UserID(input)
	if !ok {
		return nil, fmt.Errorf("coerce user: %q is not a user mention", input)
	}
	if r.dir == nil {
		return nil, errNoDirectory
	}
	if v.member {
		return r.dir.Member(ctx, id, guildID)
	}
	return r.dir.User(ctx, id)
}

type roleVariant struct{}

func (roleVariant) valid(ctx context.Context, r *Resolver, _ *Spec, input, guildID string) bool {
	id, ok := RoleID(input)
	if !ok || r.dir == nil {
		return false
	}
	kind, err := r.dir.Classify(ctx, id, guildID)
	return err == nil && kind == KindRole
}

func (roleVariant) coerce(ctx context.Context, r *Resolver, _ *Spec, input, guildID string) (any, error) {
	id, ok := RoleID(input)
	if !ok {
		return nil, fmt.Errorf("coerce role: %q is not a role mention", input)
	}
	if r.dir == nil {
		return nil, errNoDirectory
	}
	return r.dir.Role(ctx, id, guildID)
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
