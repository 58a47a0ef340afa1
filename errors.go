// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"fmt"
	"strings"
)

// UnknownCommandError is returned by the processor when the input names a
// command (or subcommand) that isn't registered and no fallback handler
// exists. An empty Command with non-empty Parents means a command group was
// invoked without any subcommand.
type UnknownCommandError struct {
	Command string
	Parents []string
}

func (uce *UnknownCommandError) Error() string {
	if uce.Command == "" && len(uce.Parents) > 0 {
		return fmt.Sprintf("command %q requires a subcommand", strings.Join(uce.Parents, " "))
	} else if len(uce.Parents) > 0 {
		return fmt.Sprintf("unknown subcommand %q of %q", uce.Command, strings.Join(uce.Parents, " "))
	}
	return fmt.Sprintf("unknown command %q", uce.Command)
}

// InsufficientArgumentsError is returned when the input ends before all
// required parameters have values.
type InsufficientArgumentsError struct {
	Command   string
	Parameter string
}

func (iae *InsufficientArgumentsError) Error() string {
	return fmt.Sprintf("missing value for required parameter %q of command %q", iae.Parameter, iae.Command)
}

// ParameterError wraps a conversion failure with the parameter it happened
// on. The wrapped error is one of the convert package's error types.
type ParameterError struct {
	Parameter string
	Err       error
}

func (pe *ParameterError) Error() string {
	return fmt.Sprintf("failed to parse parameter %q: %v", pe.Parameter, pe.Err)
}

func (pe *ParameterError) Unwrap() error {
	return pe.Err
}

// PanicError is returned by the processor when a command handler panics.
// Value holds whatever was passed to panic and Stack the goroutine stack at
// recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

func (pe *PanicError) Error() string {
	return fmt.Sprintf("panic in command handler: %v", pe.Value)
}

func (pe *PanicError) Unwrap() error {
	if err, ok := pe.Value.(error); ok {
		return err
	}
	return nil
}
