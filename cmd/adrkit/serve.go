package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rebuy-de/adrkit/pkg/app"
	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/runutil"
	"github.com/rebuy-de/adrkit/pkg/webutil"
)

// ServeRunner serves the Application over HTTP together with the admin API.
type ServeRunner struct {
	AppFlags

	listen        string
	adminListen   string
	shutdownDelay time.Duration
}

func (r *ServeRunner) Bind(cmd *cobra.Command) error {
	cmd.PersistentFlags().StringVar(
		&r.listen, "listen", webutil.DefaultListenAddress,
		`Address of the HTTP server.`)
	cmd.PersistentFlags().StringVar(
		&r.adminListen, "admin-listen", webutil.DefaultAdminListenAddress,
		`Address of the admin API with metrics and health checks.`)
	cmd.PersistentFlags().DurationVar(
		&r.shutdownDelay, "shutdown-delay", 0,
		`Time to keep serving after receiving a shutdown signal.`)
	return r.AppFlags.Bind(cmd)
}

func (r *ServeRunner) Run(ctx context.Context) error {
	a, resolver, err := r.boot(ctx)
	if err != nil {
		return err
	}

	steps := []func() error{
		func() error { return digutil.ProvideValue(resolver, webutil.ListenAddress(r.listen)) },
		func() error { return digutil.ProvideValue(resolver, webutil.AdminListenAddress(r.adminListen)) },
		func() error { return digutil.ProvideValue(resolver, webutil.ShutdownDelay(r.shutdownDelay)) },
		func() error { return webutil.ProvideHandler(resolver, func() *app.Application { return a }) },
		func() error { return runutil.ProvideWorker(resolver, webutil.NewServer) },
		func() error { return runutil.ProvideWorker(resolver, webutil.NewAdminAPI) },
	}

	for _, step := range steps {
		err := step()
		if err != nil {
			return errors.Wrap(err, "provide server")
		}
	}

	return runutil.RunProvidedWorkers(ctx, resolver)
}
