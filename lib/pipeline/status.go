// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"syscall"
)

// Exit codes used as the protocol between the executor and its stages.
const (
	// ExitFailure is the generic builtin failure code.
	ExitFailure = 1
	// ExitNotFound is the conventional "command not found" code.
	ExitNotFound = 127
)

// Status is the terminal outcome of one command line.
type Status struct {
	// Code is the exit code of the last stage.
	Code int

	// Signal is set when the last stage was terminated by a signal;
	// Code is then 128+signal, following shell convention.
	Signal syscall.Signal

	// Message is the human-readable failure description, empty on
	// success.
	Message string

	// Exit is set when a builtin requested shell termination. Code
	// carries the requested status.
	Exit bool
}

// Success reports a zero exit with no signal.
func (s Status) Success() bool {
	return s.Code == 0 && s.Signal == 0
}

func succeed() Status {
	return Status{}
}

func fail(code int, format string, args ...any) Status {
	return Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

func signaled(sig syscall.Signal) Status {
	return Status{
		Code:    128 + int(sig),
		Signal:  sig,
		Message: fmt.Sprintf("terminated by signal %d (%s)", int(sig), sig),
	}
}
