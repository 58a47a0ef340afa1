// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package botcmd implements a generic command dispatch framework for chat
// bots: quote-aware lexing of text input, typed argument conversion driven by
// an assignability-checked type registry, and nested command handlers with
// hooks around execution.
//
// Input can arrive as plain text (Process) or as structured interaction
// payloads (ProcessInteraction). Both paths produce the same Event for the
// handler, so commands don't need to care where they were invoked from.
package botcmd

import (
	"context"
	"errors"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"go.mau.fi/botcmd/args"
	"go.mau.fi/botcmd/convert"
)

// UnknownCommandName is a reserved command name. A handler registered with
// this name receives all inputs whose command doesn't match anything else in
// the same container.
const UnknownCommandName = "__unknown-command__"

// Processor parses incoming inputs and dispatches them to registered command
// handlers.
type Processor[MetaType any] struct {
	*CommandContainer[MetaType]

	// Registry holds the converters and the type registry used to parse
	// command parameters.
	Registry *convert.Registry
	// PreValidator filters text inputs before handler lookup. It defaults
	// to ValidatePrefixSubstring("!") and can be set to nil to treat every
	// input as a command.
	PreValidator PreValidator[MetaType]
	// LogArgs includes parsed argument values in the pre-execution debug
	// log. Keep it off if arguments may contain sensitive data.
	LogArgs bool

	// Hooks run around every command execution, wrapping the matched
	// handler's own hooks.
	Hooks Hooks[MetaType]
}

// NewProcessor creates a command processor using the given converter
// registry. Passing nil creates a fresh registry with the builtin types and
// converters. Custom types and converters must be added before the registry
// is sealed, and handlers with parameters can only be registered after.
func NewProcessor[MetaType any](registry *convert.Registry) *Processor[MetaType] {
	if registry == nil {
		registry = convert.NewRegistry()
	}
	return &Processor[MetaType]{
		CommandContainer: NewCommandContainer[MetaType](registry),
		Registry:         registry,
		PreValidator:     ValidatePrefixSubstring[MetaType]("!"),
	}
}

const whitespaceChars = " \t\n\v\f\r"

func remainingBlank(view *args.StringView) bool {
	return strings.Trim(view.Remaining(), whitespaceChars) == ""
}

// Process lexes the given text input, matches it against the registered
// commands and executes the handler. Inputs that don't look like commands
// (empty, or rejected by the PreValidator) are silently ignored with a nil
// return. Returned errors are safe to show to the user who sent the input.
func (proc *Processor[MetaType]) Process(ctx context.Context, meta MetaType, input string) (err error) {
	ce := &Event[MetaType]{
		RawInput:     input,
		View:         args.NewStringView(input),
		Source:       SourceText,
		InvocationID: xid.New(),
		Proc:         proc,
		Meta:         meta,
	}
	log := zerolog.Ctx(ctx).With().
		Stringer("invocation_id", ce.InvocationID).
		Stringer("command_source", ce.Source).
		Logger()
	ce.Ctx = log.WithContext(ctx)
	ce.Log = &log
	defer func() {
		err = proc.recoverPanic(ce, recover(), err)
	}()
	ce.Command = strings.ToLower(ce.View.GetWord())
	if ce.Command == "" {
		return nil
	}
	if proc.PreValidator != nil && !proc.PreValidator.Validate(ce) {
		return nil
	}
	// The prevalidator may have stripped the command down to nothing
	// (e.g. a message containing just the prefix).
	if ce.Command == "" {
		return nil
	}
	ce.Handler = proc.GetHandler(ce.Command)
	if ce.Handler == nil {
		log.Debug().Str("command", ce.Command).Msg("Unknown command")
		return &UnknownCommandError{Command: ce.Command}
	}
	if ce.Handler.PreFunc != nil {
		ce.Handler.PreFunc(ce)
	}
	for ce.Handler.subcommandContainer != nil {
		subName := strings.ToLower(ce.View.GetWord())
		if subName == "" {
			ce.View.Undo()
			break
		}
		subHandler := ce.Handler.Subcommand(subName)
		if subHandler == nil {
			ce.View.Undo()
			break
		}
		ce.ParentCommands = append(ce.ParentCommands, ce.Command)
		ce.ParentHandlers = append(ce.ParentHandlers, ce.Handler)
		ce.Command = subName
		ce.Handler = subHandler
		if subHandler.PreFunc != nil {
			subHandler.PreFunc(ce)
		}
	}
	logCtx := log.With().Str("command", ce.Command)
	if len(ce.ParentCommands) > 0 {
		logCtx = logCtx.Strs("parent_commands", ce.ParentCommands)
	}
	log = logCtx.Logger()
	ce.Ctx = log.WithContext(ctx)
	ce.Log = &log
	if ce.Handler.Func == nil {
		missing := strings.ToLower(ce.View.GetWord())
		log.Debug().Str("subcommand", missing).Msg("Unknown subcommand")
		return &UnknownCommandError{
			Command: missing,
			Parents: append(slices.Clone(ce.ParentCommands), ce.Command),
		}
	}
	err = proc.parseParameters(ce)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to parse command arguments")
		return err
	}
	proc.execute(ce)
	return nil
}

func (proc *Processor[MetaType]) execute(ce *Event[MetaType]) {
	logEvt := ce.Log.Debug()
	if proc.LogArgs && len(ce.NamedArgs) > 0 {
		logEvt = logEvt.Interface("args", ce.NamedArgs)
	}
	logEvt.Msg("Executing command")
	proc.Hooks.runPreCall(ce)
	ce.Handler.Hooks.runPreCall(ce)
	ce.Handler.Func(ce)
	ce.Handler.Hooks.runPostCall(ce)
	proc.Hooks.runPostCall(ce)
}

func (proc *Processor[MetaType]) recoverPanic(ce *Event[MetaType], panicVal any, err error) error {
	if panicVal == nil {
		return err
	}
	stack := debug.Stack()
	ce.Log.Error().
		Bytes(zerolog.ErrorStackFieldName, stack).
		Any("panic_value", panicVal).
		Msg("Panic in command handler")
	return &PanicError{Value: panicVal, Stack: stack}
}

// parseParameters fills Event.Args and Event.NamedArgs from the input view.
// Parameters are filled in declaration order, except that --name value and
// --name=value pairs anywhere in the input bind out of order. A failed
// optional parameter falls back to its default and leaves the input for the
// next parameter, while failed required or named parameters abort. Input left
// over after the last parameter is ignored.
func (proc *Processor[MetaType]) parseParameters(ce *Event[MetaType]) error {
	params := ce.Handler.Parameters
	if len(params) == 0 {
		return nil
	}
	ce.Args = make([]any, len(params))
	ce.NamedArgs = make(map[string]any, len(params))
	cctx := &convert.Context{Ctx: ce.Ctx, Meta: ce.Meta}
	provided := make([]bool, len(params))
	for i, param := range params {
		err := proc.consumeNamedArgs(ce, cctx, provided)
		if err != nil {
			return err
		}
		if provided[i] {
			continue
		}
		if remainingBlank(ce.View) {
			if !param.Optional {
				return &InsufficientArgumentsError{Command: ce.Command, Parameter: param.Name}
			}
			proc.assignArg(ce, i, param.Default)
			continue
		}
		if param.Optional {
			attempt := ce.View.Copy()
			val, err := convert.Parse(proc.Registry, cctx, attempt, param.Type, param.bound)
			if err != nil {
				var badInput *convert.BadInputError
				if errors.As(err, &badInput) {
					return &ParameterError{Parameter: param.Name, Err: err}
				}
				// The attempt copy is discarded, so the unconsumed words
				// are offered to the next parameter.
				proc.assignArg(ce, i, param.Default)
				continue
			}
			ce.View.MergeFrom(attempt)
			proc.assignArg(ce, i, val)
		} else {
			val, err := convert.Parse(proc.Registry, cctx, ce.View, param.Type, param.bound)
			if err != nil {
				return &ParameterError{Parameter: param.Name, Err: err}
			}
			proc.assignArg(ce, i, val)
		}
	}
	return nil
}

// consumeNamedArgs consumes zero or more --name value / --name=value pairs
// from the view. A -- word that doesn't match any parameter name is left in
// place to be parsed positionally. Conversion failures for named values are
// always hard errors, since an explicitly named argument can't be meant for
// any other parameter. Bool-assignable parameters without = work as bare
// flags: if the following word doesn't convert, the parameter is set to true
// and the word stays available for other parameters.
func (proc *Processor[MetaType]) consumeNamedArgs(ce *Event[MetaType], cctx *convert.Context, provided []bool) error {
	params := ce.Handler.Parameters
	for {
		ce.View.SkipWhitespace()
		if !ce.View.SkipString("--") {
			return nil
		}
		rest := ce.View.Remaining()
		nameEnd := strings.IndexAny(rest, "="+whitespaceChars)
		if nameEnd == -1 {
			nameEnd = len(rest)
		}
		param, idx := parameterByName(params, rest[:nameEnd])
		if param == nil {
			ce.View.Undo()
			return nil
		}
		ce.View.SkipString(rest[:nameEnd])
		hadEquals := ce.View.SkipString("=")
		if !hadEquals && proc.isFlagParameter(param) {
			attempt := ce.View.Copy()
			val, err := convert.Parse(proc.Registry, cctx, attempt, param.Type, param.bound)
			if err != nil {
				var badInput *convert.BadInputError
				if errors.As(err, &badInput) {
					return &ParameterError{Parameter: param.Name, Err: err}
				}
				proc.assignArg(ce, idx, true)
			} else {
				ce.View.MergeFrom(attempt)
				proc.assignArg(ce, idx, val)
			}
		} else {
			val, err := convert.Parse(proc.Registry, cctx, ce.View, param.Type, param.bound)
			if err != nil {
				return &ParameterError{Parameter: param.Name, Err: err}
			}
			proc.assignArg(ce, idx, val)
		}
		provided[idx] = true
	}
}

func (proc *Processor[MetaType]) assignArg(ce *Event[MetaType], idx int, val any) {
	ce.Args[idx] = val
	ce.NamedArgs[ce.Handler.Parameters[idx].Name] = val
}

func (proc *Processor[MetaType]) isFlagParameter(param *Parameter) bool {
	ok, err := proc.Registry.Types().IsAssignable(proc.Registry.Builtin().Bool, param.Type)
	return err == nil && ok
}
