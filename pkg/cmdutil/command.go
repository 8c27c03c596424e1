package cmdutil

import (
	"context"

	"github.com/spf13/cobra"
)

type Option func(*cobra.Command) error

// New creates a cobra command and applies all options. PreRun and
// PersistentPreRun hooks that are set by several options are chained in
// order.
func New(use, desc string, options ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: desc,
	}

	var (
		preRuns           []func(*cobra.Command, []string)
		persistentPreRuns []func(*cobra.Command, []string)
	)

	for _, o := range options {
		Must(o(cmd))

		if cmd.PreRun != nil {
			preRuns = append(preRuns, cmd.PreRun)
			cmd.PreRun = nil
		}

		if cmd.PersistentPreRun != nil {
			persistentPreRuns = append(persistentPreRuns, cmd.PersistentPreRun)
			cmd.PersistentPreRun = nil
		}
	}

	if len(persistentPreRuns) > 0 {
		cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			for _, run := range persistentPreRuns {
				run(cmd, args)
			}
		}
	}

	if len(preRuns) > 0 {
		cmd.PreRun = func(cmd *cobra.Command, args []string) {
			for _, run := range preRuns {
				run(cmd, args)
			}
		}
	}

	return cmd
}

func WithSubCommand(sub *cobra.Command) Option {
	return func(parent *cobra.Command) error {
		parent.AddCommand(sub)
		return nil
	}
}

// WithRun sets a run function that gets a context, which is cancelled on
// SIGINT and SIGTERM.
func WithRun(run RunFuncWithContext) Option {
	return func(cmd *cobra.Command) error {
		cmd.Run = func(cmd *cobra.Command, args []string) {
			run(SignalRootContext(), cmd, args)
		}
		return nil
	}
}

// Runner defines the command line flags of a command with Bind and executes
// it with Run.
type Runner interface {
	Bind(*cobra.Command) error
	Run(context.Context) error
}

func WithRunner(runner Runner) Option {
	return func(cmd *cobra.Command) error {
		err := runner.Bind(cmd)
		if err != nil {
			return err
		}

		cmd.Run = func(cmd *cobra.Command, args []string) {
			ctx := SignalRootContext()
			Must(runner.Run(ctx))
		}
		return nil
	}
}
