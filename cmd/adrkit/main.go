package main

import (
	"log/slog"

	"github.com/rebuy-de/adrkit/pkg/cmdutil"
)

func main() {
	defer cmdutil.HandleExit()
	if err := NewRootCommand().Execute(); err != nil {
		slog.Error(err.Error())
		cmdutil.Exit(cmdutil.ExitCodeUsage)
	}
}
