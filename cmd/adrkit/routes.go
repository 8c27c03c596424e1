package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/router"
)

// RoutesRunner prints all registered routes.
type RoutesRunner struct {
	AppFlags
}

func (r *RoutesRunner) Bind(cmd *cobra.Command) error {
	return r.AppFlags.Bind(cmd)
}

func (r *RoutesRunner) Run(ctx context.Context) error {
	a, _, err := r.boot(ctx)
	if err != nil {
		return err
	}

	return printRoutes(os.Stdout, a.Router().Routes())
}

func printRoutes(w io.Writer, routes []*router.Route) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATTERN\tTARGET")
	for _, route := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", route.Method, route.Pattern, describeTarget(route.Target))
	}
	return tw.Flush()
}

func describeTarget(target any) string {
	switch t := target.(type) {
	case digutil.Key:
		return fmt.Sprintf("key %q", string(t))
	default:
		return fmt.Sprintf("%T", target)
	}
}
