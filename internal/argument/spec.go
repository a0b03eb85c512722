// Package argument declares typed command arguments and turns free-form user
// text into structured values.
//
// A Spec describes one parameter. A Resolver validates raw text against a
// Spec and coerces it, consulting a Directory for mention-typed arguments
// (channels, roles, users, members). Validation failures are reported as
// invalid Values, never as errors.
package argument

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSpec reports a malformed argument declaration. It is a startup
// configuration error.
var ErrInvalidSpec = errors.New("argument: invalid spec")

// Type is the kind of value an argument accepts.
type Type int

const (
	// TypeString is free text. It is the zero value.
	TypeString Type = iota
	TypeBoolean
	TypeCategory
	TypeChannel
	TypeCustom
	TypeDuration
	TypeEmoji
	TypeJSON
	TypeMember
	TypeNumber
	TypeRole
	TypeTextChannel
	TypeUser
	TypeVoiceChannel
)

var typeNames = map[Type]string{
	TypeString:       "string",
	TypeBoolean:      "boolean",
	TypeCategory:     "category",
	TypeChannel:      "channel",
	TypeCustom:       "custom",
	TypeDuration:     "duration",
	TypeEmoji:        "emoji",
	TypeJSON:         "json",
	TypeMember:       "member",
	TypeNumber:       "number",
	TypeRole:         "role",
	TypeTextChannel:  "textchannel",
	TypeUser:         "user",
	TypeVoiceChannel: "voicechannel",
}

// String returns the lower-case type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType maps a type name back to its Type.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("parse argument type: unknown type %q", name)
}

func (t Type) known() bool {
	_, ok := typeNames[t]
	return ok
}

// scopeBound reports whether the type can only be resolved inside a guild.
func (t Type) scopeBound() bool {
	switch t {
	case TypeCategory, TypeChannel, TypeTextChannel, TypeVoiceChannel, TypeMember, TypeRole:
		return true
	default:
		return false
	}
}

// Spec declares one command argument.
type Spec struct {
	// Key identifies the argument within one command.
	Key string
	// Label describes the argument in help output.
	Label string
	// Type selects the validation and coercion rules.
	Type Type
	// Required rejects blank input.
	Required bool
	// CaseSensitive keeps string input as typed and makes Of matching exact.
	CaseSensitive bool
	// Of restricts input to a fixed set of literals. When set, type rules are
	// skipped and the coerced value is the input, lower-cased unless
	// CaseSensitive.
	Of []string
	// Min and Max bound numbers, durations (milliseconds) and string lengths.
	Min, Max *float64
	// CustomTypeName labels a TypeCustom argument.
	CustomTypeName string
	// InvalidMessage is shown to the caller when the input is rejected.
	InvalidMessage string
	// Default is used by ResolveAll when an optional argument is absent.
	Default any
	// Validator replaces every built-in rule when set.
	Validator func(input, guildID string) bool
}

// Bound is a helper for declaring Min and Max inline.
func Bound(v float64) *float64 { return &v }

// Validate checks the declaration. Every failure wraps ErrInvalidSpec.
func (s *Spec) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil spec", ErrInvalidSpec)
	}
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidSpec)
	}
	if !s.Type.known() {
		return fmt.Errorf("%w: argument %q: unknown type %d", ErrInvalidSpec, s.Key, int(s.Type))
	}
	for _, bound := range []*float64{s.Min, s.Max} {
		if bound != nil && (math.IsNaN(*bound) || math.IsInf(*bound, 0)) {
			return fmt.Errorf("%w: argument %q: bounds must be finite", ErrInvalidSpec, s.Key)
		}
	}

	switch s.Type {
	case TypeNumber, TypeDuration:
		if s.Min != nil && s.Max != nil && *s.Min >= *s.Max {
			return fmt.Errorf("%w: argument %q: minimum must be strictly less than maximum", ErrInvalidSpec, s.Key)
		}
		if s.Type == TypeDuration && ((s.Min != nil && *s.Min < 0) || (s.Max != nil && *s.Max < 0)) {
			return fmt.Errorf("%w: argument %q: duration bounds must be non-negative", ErrInvalidSpec, s.Key)
		}
	case TypeString:
		if (s.Min != nil && *s.Min < 0) || (s.Max != nil && *s.Max < 0) {
			return fmt.Errorf("%w: argument %q: length bounds must be non-negative", ErrInvalidSpec, s.Key)
		}
		if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
			return fmt.Errorf("%w: argument %q: minimum length exceeds maximum", ErrInvalidSpec, s.Key)
		}
	case TypeCustom:
		if strings.TrimSpace(s.CustomTypeName) == "" {
			return fmt.Errorf("%w: argument %q: custom type requires a type name", ErrInvalidSpec, s.Key)
		}
	}

	return nil
}

// ErrorMessage is the caller-facing text for a rejected value.
func (s *Spec) ErrorMessage() string {
	if s.InvalidMessage != "" {
		return s.InvalidMessage
	}
	return fmt.Sprintf("Wrong value provided for argument %s", s.Key)
}

// TypeName is the type shown in help output; custom types show their label.
func (s *Spec) TypeName() string {
	if s.Type == TypeCustom && s.CustomTypeName != "" {
		return s.CustomTypeName
	}
	return s.Type.String()
}

// Usage renders the argument as <key> when required and [key] otherwise.
func (s *Spec) Usage() string {
	if s.Required {
		return "<" + s.Key + ">"
	}
	return "[" + s.Key + "]"
}

// match returns the declared literal equal to input under the case rule.
func (s *Spec) match(input string) bool {
	for _, literal := range s.Of {
		if s.CaseSensitive {
			if literal == input {
				return true
			}
			continue
		}
		if strings.EqualFold(literal, input) {
			return true
		}
	}
	return false
}

func (s *Spec) inBounds(v float64) bool {
	if s.Min != nil && v < *s.Min {
		return false
	}
	if s.Max != nil && v > *s.Max {
		return false
	}
	return true
}
