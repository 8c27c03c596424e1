package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rebuy-de/adrkit/pkg/app"
	"github.com/rebuy-de/adrkit/pkg/cmdutil"
	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/exception"
	"github.com/rebuy-de/adrkit/pkg/logutil"
	"github.com/rebuy-de/adrkit/pkg/render"
)

// NewRootCommand initializes the cobra.Command with support of the cmdutil
// package.
func NewRootCommand() *cobra.Command {
	return cmdutil.New(
		"adrkit", "Action-Domain-Responder example server",
		cmdutil.WithLogFlags(),
		cmdutil.WithVersionCommand(),
		cmdutil.WithVersionLog(slog.LevelDebug),

		cmdutil.WithSubCommand(cmdutil.New(
			"serve", "Serve the application over HTTP",
			cmdutil.WithRunner(new(ServeRunner)),
		)),

		cmdutil.WithSubCommand(cmdutil.New(
			"cgi", "Handle a single request from the CGI environment",
			cmdutil.WithRunner(new(CGIRunner)),
		)),

		cmdutil.WithSubCommand(cmdutil.New(
			"routes", "List all registered routes",
			cmdutil.WithRunner(new(RoutesRunner)),
		)),
	)
}

// fileConfig contains the parts of the config file that are needed before
// the Application is booted. Everything else ends up in the Application
// config.
type fileConfig struct {
	ErrorPreferences *exception.Preferences `yaml:"error-preferences"`
}

// AppFlags are shared by all commands that boot the Application.
type AppFlags struct {
	configPath string
	debug      bool
}

func (f *AppFlags) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVar(
		&f.configPath, "config", "",
		`Path to a YAML config file.`)
	cmd.PersistentFlags().BoolVar(
		&f.debug, "debug", false,
		`Include stack traces in rendered errors.`)
	return nil
}

// boot creates the resolver, applies the flags and config file and boots the
// Application with the example routes.
func (f *AppFlags) boot(ctx context.Context) (*app.Application, *digutil.Resolver, error) {
	ctx = logutil.Start(ctx, "boot")

	var data []byte
	if f.configPath != "" {
		var err error
		data, err = os.ReadFile(f.configPath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "read config file")
		}
	}

	return bootApplication(ctx, data, f.debug)
}

func bootApplication(ctx context.Context, config []byte, debug bool) (*app.Application, *digutil.Resolver, error) {
	var fc fileConfig
	err := yaml.Unmarshal(config, &fc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decode config file")
	}

	r := digutil.NewResolver()

	if fc.ErrorPreferences != nil {
		logutil.Get(ctx).Debug("using error preferences from config",
			"media-types", fc.ErrorPreferences.Types())
		err = digutil.ProvideValue(r, fc.ErrorPreferences)
		if err != nil {
			return nil, nil, err
		}
	}

	err = digutil.ProvideValue(r, render.NewRenderer(render.WithDebug(debug)))
	if err != nil {
		return nil, nil, err
	}

	a, err := app.Boot(r)
	if err != nil {
		return nil, nil, err
	}

	err = a.LoadConfig(bytes.NewReader(config))
	if err != nil {
		return nil, nil, err
	}

	catalog, err := catalogFromConfig(a)
	if err != nil {
		return nil, nil, err
	}

	err = registerItems(r, catalog)
	if err != nil {
		return nil, nil, err
	}

	a.AddRoutes(itemRoutes)

	return a, r, nil
}
