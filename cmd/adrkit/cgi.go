package main

import (
	"context"

	"github.com/spf13/cobra"
)

// CGIRunner handles the request described by the CGI environment variables
// and writes the raw response to stdout.
type CGIRunner struct {
	AppFlags
}

func (r *CGIRunner) Bind(cmd *cobra.Command) error {
	return r.AppFlags.Bind(cmd)
}

func (r *CGIRunner) Run(ctx context.Context) error {
	a, _, err := r.boot(ctx)
	if err != nil {
		return err
	}

	return a.Run(ctx, nil, nil)
}
