package argument

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Value is a resolved argument. The zero Value is invalid.
type Value struct {
	v  any
	ok bool
}

func valid(v any) Value { return Value{v: v, ok: true} }

// OK reports whether the input passed validation.
func (v Value) OK() bool { return v.ok }

// Any returns the raw coerced value.
func (v Value) Any() any { return v.v }

func (v Value) Bool() bool {
	b, _ := v.v.(bool)
	return b
}

func (v Value) Float() float64 {
	switch n := v.v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func (v Value) Int() int64 {
	switch n := v.v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// Millis returns a duration argument in milliseconds.
func (v Value) Millis() int64 { return v.Int() }

// Duration returns a duration argument as a time.Duration.
func (v Value) Duration() time.Duration { return time.Duration(v.Millis()) * time.Millisecond }

// String returns text values. Other kinds yield "".
func (v Value) String() string {
	s, _ := v.v.(string)
	return s
}

func (v Value) Channel() *discordgo.Channel {
	c, _ := v.v.(*discordgo.Channel)
	return c
}

// User returns the user of a user or member argument.
func (v Value) User() *discordgo.User {
	switch u := v.v.(type) {
	case *discordgo.User:
		return u
	case *discordgo.Member:
		if u != nil {
			return u.User
		}
	}
	return nil
}

func (v Value) Member() *discordgo.Member {
	m, _ := v.v.(*discordgo.Member)
	return m
}

func (v Value) Role() *discordgo.Role {
	r, _ := v.v.(*discordgo.Role)
	return r
}

// Values maps argument keys to resolved values.
type Values map[string]Value

// Get returns the value for key, or an invalid Value when absent.
func (vs Values) Get(key string) Value {
	return vs[key]
}
