package cmd

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2 // bad usage or nothing to evaluate
)

// exitErr is returned by commands to signal a specific exit code.
type exitErr struct {
	code int
	msg  string
}

func (e exitErr) Error() string { return e.msg }

func usageError(format string, args ...any) error {
	return exitErr{code: exitUsage, msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitError
}
