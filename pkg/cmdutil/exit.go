package cmdutil

import (
	"fmt"
	"log/slog"
	"os"
)

// Exit codes of the process. Codes starting at ExitCodeSDK are reserved for
// this package, applications may use ExitCodeCustom and above.
const (
	ExitCodeOK           = 0
	ExitCodeGeneralError = 1
	ExitCodeUsage        = 2
	ExitCodeSDK          = 16
	ExitCodeCustom       = 32

	ExitCodeMultipleInterrupts = ExitCodeSDK + 0
)

type exitCode struct {
	code int
}

// Exit terminates the program with the given code after all deferred
// functions ran. It panics with a value that is recovered by HandleExit, which
// has to be deferred at the top of main.
func Exit(code int) {
	panic(exitCode{code: code})
}

// HandleExit turns the panic of Exit into os.Exit. Any other panic is
// propagated.
func HandleExit() {
	e := recover()
	if e == nil {
		return
	}

	exit, ok := e.(exitCode)
	if !ok {
		panic(e)
	}
	os.Exit(exit.code)
}

// Must logs the error with its stack trace and exits with
// ExitCodeGeneralError, unless err is nil.
func Must(err error) {
	if err == nil {
		return
	}

	slog.Error(err.Error(), "stacktrace", fmt.Sprintf("%+v", err))
	Exit(ExitCodeGeneralError)
}
