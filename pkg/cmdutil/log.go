package cmdutil

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebuy-de/adrkit/pkg/logutil"
)

// LogFlags holds the logging related command line flags.
type LogFlags struct {
	Verbose     bool
	JSON        bool
	GELFAddress string
}

// Bind defines the --verbose, --json-logs and --gelf-address flags.
func (f *LogFlags) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(
		&f.Verbose, "verbose", "v", false,
		"prints debug log messages")
	cmd.PersistentFlags().BoolVar(
		&f.JSON, "json-logs", false,
		"print the logs in JSON format")
	cmd.PersistentFlags().StringVar(
		&f.GELFAddress, "gelf-address", "",
		`Address to Graylog for logging (format: "ip:port")`)
}

// Handler builds the slog handler for the current flag values.
func (f *LogFlags) Handler() (slog.Handler, error) {
	level := slog.LevelInfo
	if f.Verbose {
		level = slog.LevelDebug
	}

	return logutil.NewHandler(logutil.HandlerOptions{
		Level:       level,
		JSON:        f.JSON,
		Writer:      os.Stderr,
		GELFAddress: f.GELFAddress,
	})
}

// WithLogFlags binds the LogFlags to the command and installs the resulting
// handler as default logger before the command runs.
func WithLogFlags() Option {
	flags := new(LogFlags)

	return func(cmd *cobra.Command) error {
		flags.Bind(cmd)

		cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			handler, err := flags.Handler()
			Must(err)

			slog.SetDefault(slog.New(handler).With(
				"facility", Name,
				"version", Version,
			))
		}

		return nil
	}
}
