package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/amp-sync/synchronize"
	"github.com/spf13/cobra"
)

const (
	exitOK      = 0
	exitTimeout = 1
	exitUsage   = 2
)

var errNothingToWaitFor = errors.New("nothing to wait for: give a command after -- or a --plan")

type rootFlags struct {
	timeout     time.Duration
	interval    time.Duration
	contains    string
	file        string
	plan        string
	mode        string
	description string
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, synchronize.ErrTimeout):
		return exitTimeout
	default:
		return exitUsage
	}
}

// newRootCmd creates the waitfor command. cfg supplies the defaults that a
// plan file and then flags may override.
func newRootCmd(cfg synchronize.Config) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "waitfor [flags] [-- command [args...]]",
		Short: "Wait until a command or file condition holds",
		Long: "Poll a condition until it holds or the timeout elapses.\n" +
			"Exit status is 0 when satisfied, 1 on timeout and 2 on any other failure.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(cmd, flags, args)
			if err != nil {
				return err
			}

			check, err := plan.Check()
			if err != nil {
				return err
			}

			err = synchronize.Do(cmd.Context(), check, plan.Timeout,
				synchronize.WithInterval(plan.Interval),
				synchronize.WithDescription(plan.Description))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "satisfied: %s\n", plan.Description)

			return nil
		},
	}

	f := cmd.Flags()
	f.DurationVar(&flags.timeout, "timeout", cfg.MaxWait, "maximum time to wait")
	f.DurationVar(&flags.interval, "interval", cfg.Interval, "wait between attempts")
	f.StringVar(&flags.contains, "contains", "", "require this text in the command output or file")
	f.StringVar(&flags.file, "file", "", "wait for this file instead of a command")
	f.StringVar(&flags.plan, "plan", "", "YAML plan describing the checks")
	f.StringVar(&flags.mode, "mode", "", "combine plan checks with 'any' or 'all'")
	f.StringVar(&flags.description, "description", "", "what is being waited for")

	return cmd
}

// buildPlan merges the plan file (if any) with flags and positional args.
// Flags win over the plan; the plan wins over the environment defaults,
// which are the flag defaults.
func buildPlan(cmd *cobra.Command, flags *rootFlags, args []string) (*Plan, error) {
	plan := &Plan{}

	if flags.plan != "" {
		loaded, err := LoadPlan(flags.plan)
		if err != nil {
			return nil, err
		}

		plan = loaded
	}

	changed := cmd.Flags().Changed

	if changed("timeout") || plan.Timeout == 0 {
		plan.Timeout = flags.timeout
	}

	if changed("interval") || plan.Interval == 0 {
		plan.Interval = flags.interval
	}

	if changed("mode") {
		plan.Mode = flags.mode
	}

	if len(args) > 0 || flags.file != "" {
		plan.Checks = append(plan.Checks, CheckSpec{
			Command:  args,
			File:     flags.file,
			Contains: flags.contains,
		})
	}

	if changed("description") {
		plan.Description = flags.description
	}

	if len(plan.Checks) == 0 {
		return nil, errNothingToWaitFor
	}

	if plan.Description == "" {
		plan.Description = plan.Checks[0].String()
	}

	return plan, plan.Validate()
}
