// Package cmdutil contains helper utilities for setting up a CLI with Go,
// providing basic application behavior and for reducing boilerplate code.
//
// # Graceful Application Exits
//
// Exit panics with a known value, which gets recovered by HandleExit right
// before the process terminates. Unlike os.Exit, deferred functions still
// run. HandleExit has to be the first deferred call in main:
//
//	func main() {
//	    defer cmdutil.HandleExit()
//	    if err := cmd.NewRootCommand().Execute(); err != nil {
//	        slog.Error(err.Error())
//	        cmdutil.Exit(cmdutil.ExitCodeUsage)
//	    }
//	}
//
// # Command Structure
//
//	cmd := cmdutil.New(
//	    "adrkit", "Action-Domain-Responder server",
//	    cmdutil.WithLogFlags(),
//	    cmdutil.WithVersionCommand(),
//	    cmdutil.WithVersionLog(slog.LevelDebug),
//	    cmdutil.WithSubCommand(cmdutil.New(
//	        "serve", "Serve the application over HTTP",
//	        cmdutil.WithRunner(new(ServeRunner)),
//	    )),
//	)
//
// Runners define their flags in Bind and get a context in Run, which is
// cancelled on SIGINT or SIGTERM. A second signal terminates the process
// immediately.
//
// # Version Command
//
// The Build* variables are printed by the version command. They need to be
// set by the build system via ldflags:
//
//	go build -ldflags "\
//	  -X 'github.com/rebuy-de/adrkit/pkg/cmdutil.Name=adrkit' \
//	  -X 'github.com/rebuy-de/adrkit/pkg/cmdutil.Version=${VERSION}' \
//	  -X 'github.com/rebuy-de/adrkit/pkg/cmdutil.CommitHash=${HASH}'"
package cmdutil
