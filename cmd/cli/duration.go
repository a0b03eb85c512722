package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshon/commandeer/pkg/duration"
)

func newDurationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duration",
		Short: "Parse and format chat durations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newDurationParseCommand(), newDurationFormatCommand())
	return cmd
}

func newDurationParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "parse <text>",
		Short:   "Print the milliseconds a duration stands for",
		Args:    cobra.MinimumNArgs(1),
		Example: `commandeer duration parse 1h30m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			millis, ok := duration.Parse(text)
			if !ok {
				return fmt.Errorf("invalid duration %q", text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), millis)
			return nil
		},
	}
}

func newDurationFormatCommand() *cobra.Command {
	var bold bool
	cmd := &cobra.Command{
		Use:     "format <milliseconds>",
		Short:   "Print a millisecond count as prose",
		Args:    cobra.ExactArgs(1),
		Example: `commandeer duration format 90061000 --bold`,
		RunE: func(cmd *cobra.Command, args []string) error {
			millis, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid milliseconds %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), duration.Format(millis, bold))
			return nil
		},
	}
	cmd.Flags().BoolVar(&bold, "bold", false, "wrap numbers in ** markers")
	return cmd
}
