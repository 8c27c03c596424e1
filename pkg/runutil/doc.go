// Package runutil runs long-living workers, like the HTTP server and the
// admin API, until the context gets cancelled or one of them fails.
//
//	err := errors.Join(
//	    runutil.ProvideWorker(r, webutil.NewServer),
//	    runutil.ProvideWorker(r, webutil.NewAdminAPI),
//	)
//	if err != nil {
//	    return err
//	}
//
//	return runutil.RunProvidedWorkers(ctx, r)
package runutil
