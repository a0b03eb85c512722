package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeCall struct {
	owner      *Command
	args       []string
	identifier string
}

func recordRoute(calls *[]routeCall) SubcommandHandler {
	return func(_ context.Context, owner *Command, _ *Invocation, args []string, identifier string) error {
		*calls = append(*calls, routeCall{owner: owner, args: args, identifier: identifier})
		return nil
	}
}

func TestRouteFirstMatchWins(t *testing.T) {
	var first, second []routeCall
	cmd := &Command{
		Name: "role",
		Subcommands: []*Subcommand{
			{Identifiers: []string{"add", "give"}, Run: recordRoute(&first)},
			{Identifiers: []string{"give"}, Run: recordRoute(&second)},
		},
	}

	routed, err := cmd.Route(context.Background(), &Invocation{Args: []string{"GIVE", "<@1>", "mods"}})
	require.NoError(t, err)
	require.True(t, routed)
	require.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Same(t, cmd, first[0].owner)
	assert.Equal(t, []string{"<@1>", "mods"}, first[0].args)
	assert.Equal(t, "give", first[0].identifier)
}

func TestRouteCaseSensitive(t *testing.T) {
	var calls []routeCall
	cmd := &Command{
		Name:          "mode",
		CaseSensitive: true,
		Subcommands:   []*Subcommand{{Identifiers: []string{"On"}, Run: recordRoute(&calls)}},
	}

	routed, err := cmd.Route(context.Background(), &Invocation{Args: []string{"on"}})
	require.NoError(t, err)
	assert.False(t, routed)

	routed, err = cmd.Route(context.Background(), &Invocation{Args: []string{"On"}})
	require.NoError(t, err)
	assert.True(t, routed)
	assert.Empty(t, calls[0].args)
}

func TestExecuteFallsBackToRun(t *testing.T) {
	var calls []routeCall
	ranDefault := false
	cmd := &Command{
		Name:        "tag",
		Subcommands: []*Subcommand{{Identifiers: []string{"list"}, Run: recordRoute(&calls)}},
		Run: func(context.Context, *Invocation) error {
			ranDefault = true
			return nil
		},
	}

	require.NoError(t, cmd.Execute(context.Background(), &Invocation{Args: []string{"hello"}}))
	assert.True(t, ranDefault)
	assert.Empty(t, calls)

	ranDefault = false
	require.NoError(t, cmd.Execute(context.Background(), &Invocation{}))
	assert.True(t, ranDefault)

	ranDefault = false
	require.NoError(t, cmd.Execute(context.Background(), &Invocation{Args: []string{"list"}}))
	assert.False(t, ranDefault)
	assert.Len(t, calls, 1)
}

func TestExecutePropagatesSubcommandError(t *testing.T) {
	boom := errors.New("boom")
	cmd := &Command{
		Name: "tag",
		Subcommands: []*Subcommand{{
			Identifiers: []string{"rm"},
			Run: func(context.Context, *Command, *Invocation, []string, string) error {
				return boom
			},
		}},
	}
	assert.ErrorIs(t, cmd.Execute(context.Background(), &Invocation{Args: []string{"rm", "x"}}), boom)
}
