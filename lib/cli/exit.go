// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a specific non-zero exit code without printing an
// extra error message. When a command's Run returns an ExitError, the
// main function exits with the carried code and prints nothing — the
// command is expected to have already written its own output.
//
// The dirotp tools use this to pass directory result codes through as
// process exit statuses: external callers branch on the code, so it must
// not be collapsed to a generic 1.
type ExitError struct {
	Code int
}

// Exit returns an ExitError carrying code.
func Exit(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. Main functions check for this
// interface on returned errors to distinguish "handled non-zero exit"
// from "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}
