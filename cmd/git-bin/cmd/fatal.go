package cmd

import (
	"io"
	"os"

	"github.com/oneconcern/gitbin/pkg/status"
)

const (
	// exitKnown is returned for errors of the git-bin taxonomy
	exitKnown = 1

	// exitUnexpected is returned for any other failure, panics included
	exitUnexpected = 2
)

var (
	// globals used to patch over calls to os.Exit() and standard streams during test

	osExit = os.Exit

	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func exitCode(err error) int {
	if status.Known(err) {
		return exitKnown
	}
	return exitUnexpected
}

func wrapFatal(err error) {
	if err == nil {
		return
	}
	newConsole(stderr).Errorf("%v", err)
	osExit(exitCode(err))
}
