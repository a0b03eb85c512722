package argument

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Resolver validates and coerces raw argument text.
type Resolver struct {
	dir Directory
}

// NewResolver returns a Resolver backed by dir. A nil directory makes every
// mention-typed argument invalid.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Valid reports whether input is acceptable for s in the given guild. An empty
// guildID means the input came from a direct message.
func (r *Resolver) Valid(ctx context.Context, s *Spec, input, guildID string) bool {
	if s.Validator != nil {
		return s.Validator(input, guildID)
	}
	if input == "" {
		return false
	}
	if s.Required && strings.TrimSpace(input) == "" {
		return false
	}
	if len(s.Of) > 0 {
		ok := s.match(input)
		return ok
	}
	if s.Type.scopeBound() && guildID == "" {
		return false
	}
	v := s.Type.variant()
	if v == nil {
		return false
	}
	return v.valid(ctx, r, s, input, guildID)
}

// Resolve validates input and returns the coerced value. Invalid input and
// failed lookups both yield an invalid Value.
func (r *Resolver) Resolve(ctx context.Context, s *Spec, input, guildID string) Value {
	if !r.Valid(ctx, s, input, guildID) {
		return Value{}
	}
	if len(s.Of) > 0 && s.Validator == nil {
		if s.CaseSensitive {
			return valid(input)
		}
		return valid(strings.ToLower(input))
	}
	v := s.Type.variant()
	if v == nil {
		return Value{}
	}
	out, err := v.coerce(ctx, r, s, input, guildID)
	if err != nil || out == nil {
		return Value{}
	}
	return valid(out)
}

// InvalidArgumentError names the first argument that failed to resolve.
type InvalidArgumentError struct {
	Spec    *Spec
	Input   string
	Missing bool
}

func (e *InvalidArgumentError) Error() string {
	return e.Spec.ErrorMessage()
}

// ResolveAll binds tokens to specs positionally and resolves them
// concurrently. When the final spec is free text it absorbs every remaining
// token. A missing optional argument takes its Default.
func (r *Resolver) ResolveAll(ctx context.Context, specs []*Spec, tokens []string, guildID string) (Values, error) {
	inputs := bind(specs, tokens)
	results := make([]Value, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range specs {
		if inputs[i] == "" {
			continue
		}
		g.Go(func() error {
			results[i] = r.Resolve(gctx, s, inputs[i], guildID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve arguments: %w", err)
	}

	values := make(Values, len(specs))
	for i, s := range specs {
		if inputs[i] == "" {
			if s.Required {
				return values, &InvalidArgumentError{Spec: s, Missing: true}
			}
			if s.Default != nil {
				values[s.Key] = valid(s.Default)
			}
			continue
		}
		if !results[i].OK() {
			return values, &InvalidArgumentError{Spec: s, Input: inputs[i]}
		}
		values[s.Key] = results[i]
	}
	return values, nil
}

func bind(specs []*Spec, tokens []string) []string {
	inputs := make([]string, len(specs))
	for i, s := range specs {
		if i >= len(tokens) {
			break
		}
		if i == len(specs)-1 && absorbs(s) {
			inputs[i] = strings.Join(tokens[i:], " ")
			break
		}
		inputs[i] = tokens[i]
	}
	return inputs
}

func absorbs(s *Spec) bool {
	return len(s.Of) == 0 && (s.Type == TypeString || s.Type == TypeCustom)
}
