package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// The build variables are printed by the version command. They should be
// overwritten on build time by using ldflags.
var (
	Name       = "unknown"
	Version    = "unknown"
	GoModule   = "unknown"
	GoPackage  = "unknown"
	BuildDate  = "unknown"
	CommitDate = "unknown"
	CommitHash = "unknown"
)

// PrintVersion writes all build variables as aligned table.
func PrintVersion(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, row := range [][2]string{
		{"Name", Name},
		{"Version", Version},
		{"GoModule", GoModule},
		{"GoPackage", GoPackage},
		{"GoVersion", runtime.Version()},
		{"BuildDate", BuildDate},
		{"CommitDate", CommitDate},
		{"CommitHash", CommitHash},
	} {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

// NewVersionCommand creates a command that prints the build variables. It
// skips the persistent hooks of the parent, so it works without any setup.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Shows version of this application",
		PersistentPreRun:  func(*cobra.Command, []string) {},
		PersistentPostRun: func(*cobra.Command, []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintVersion(cmd.OutOrStdout())
		},
	}
}

func WithVersionCommand() Option {
	return func(cmd *cobra.Command) error {
		cmd.AddCommand(NewVersionCommand())
		return nil
	}
}

// WithVersionLog logs the version on the given level before every command.
func WithVersionLog(level slog.Level) Option {
	return func(cmd *cobra.Command) error {
		cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			slog.Log(cmd.Context(), level, Name+" started",
				"version", Version,
				"commit-date", CommitDate,
				"commit-hash", CommitHash,
			)
		}
		return nil
	}
}
