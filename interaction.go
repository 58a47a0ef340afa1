// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"go.mau.fi/botcmd/args"
	"go.mau.fi/botcmd/convert"
)

// ErrInvalidPayload is returned by ProcessInteraction for payloads that
// aren't valid JSON or don't have the expected shape.
var ErrInvalidPayload = errors.New("invalid interaction payload")

// ProcessInteraction executes a command from a structured payload instead of
// lexed text. The payload format is
//
//	{"command": ["parent", "sub"], "options": {"name": value}}
//
// as produced by InteractionBuilder or Event.StructuredArgs. The command path
// must match handlers exactly and each option is converted individually, so
// quoting rules don't apply. PreValidators and PreFuncs don't run on this
// path.
func (proc *Processor[MetaType]) ProcessInteraction(ctx context.Context, meta MetaType, payload []byte) (err error) {
	ce := &Event[MetaType]{
		RawInput:     string(payload),
		View:         args.NewStringView(""),
		Source:       SourceInteraction,
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
	if !gjson.ValidBytes(payload) {
		return fmt.Errorf("%w: not valid JSON", ErrInvalidPayload)
	}
	path := gjson.GetBytes(payload, "command")
	if !path.IsArray() {
		return fmt.Errorf("%w: command path is missing or not an array", ErrInvalidPayload)
	}
	parts := path.Array()
	if len(parts) == 0 {
		return fmt.Errorf("%w: command path is empty", ErrInvalidPayload)
	}
	for i, part := range parts {
		if part.Type != gjson.String || part.Str == "" {
			return fmt.Errorf("%w: command path element %d is not a string", ErrInvalidPayload, i)
		}
	}
	ce.Command = strings.ToLower(parts[0].Str)
	ce.Handler = proc.GetHandler(ce.Command)
	if ce.Handler == nil {
		log.Debug().Str("command", ce.Command).Msg("Unknown command in interaction")
		return &UnknownCommandError{Command: ce.Command}
	}
	for _, part := range parts[1:] {
		subName := strings.ToLower(part.Str)
		subHandler := ce.Handler.Subcommand(subName)
		if subHandler == nil {
			return &UnknownCommandError{
				Command: subName,
				Parents: append(slices.Clone(ce.ParentCommands), ce.Command),
			}
		}
		ce.ParentCommands = append(ce.ParentCommands, ce.Command)
		ce.ParentHandlers = append(ce.ParentHandlers, ce.Handler)
		ce.Command = subName
		ce.Handler = subHandler
	}
	logCtx := log.With().Str("command", ce.Command)
	if len(ce.ParentCommands) > 0 {
		logCtx = logCtx.Strs("parent_commands", ce.ParentCommands)
	}
	log = logCtx.Logger()
	ce.Ctx = log.WithContext(ctx)
	ce.Log = &log
	if ce.Handler.Func == nil {
		return &UnknownCommandError{
			Parents: append(slices.Clone(ce.ParentCommands), ce.Command),
		}
	}
	err = proc.parseInteractionOptions(ce, gjson.GetBytes(payload, "options"))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to parse interaction options")
		return err
	}
	proc.execute(ce)
	return nil
}

// parseInteractionOptions converts the options object of an interaction
// payload. String-typed parameters take string values as-is, everything else
// is converted from the value's text form through a fresh per-value view.
// JSON null counts as not provided. Failures are always hard errors, since
// structured options can't spill over to other parameters.
func (proc *Processor[MetaType]) parseInteractionOptions(ce *Event[MetaType], options gjson.Result) error {
	params := ce.Handler.Parameters
	if len(params) == 0 {
		return nil
	}
	ce.Args = make([]any, len(params))
	ce.NamedArgs = make(map[string]any, len(params))
	cctx := &convert.Context{Ctx: ce.Ctx, Meta: ce.Meta}
	for i, param := range params {
		res := options.Get(param.Name)
		if !res.Exists() || res.Type == gjson.Null {
			if !param.Optional {
				return &InsufficientArgumentsError{Command: ce.Command, Parameter: param.Name}
			}
			proc.assignArg(ce, i, param.Default)
			continue
		}
		if res.Type == gjson.String && param.Type.AsNonNullable() == proc.Registry.Builtin().String {
			proc.assignArg(ce, i, res.Str)
			continue
		}
		raw := res.Raw
		if res.Type == gjson.String {
			raw = res.Str
		}
		val, err := convert.Parse(proc.Registry, cctx, args.NewStringView(raw), param.Type, param.bound)
		if err != nil {
			return &ParameterError{Parameter: param.Name, Err: err}
		}
		proc.assignArg(ce, i, val)
	}
	return nil
}

// InteractionBuilder assembles an interaction payload for
// Processor.ProcessInteraction. Errors are collected and returned once from
// Payload.
type InteractionBuilder struct {
	payload []byte
	err     error
}

// NewInteraction starts a payload for the given command path.
func NewInteraction(command ...string) *InteractionBuilder {
	payload, err := sjson.SetBytes([]byte(`{}`), "command", command)
	return &InteractionBuilder{payload: payload, err: err}
}

// SetOption sets the value of one named option. Durations are written in
// their string form so they survive the round trip through conversion.
func (ib *InteractionBuilder) SetOption(name string, value any) *InteractionBuilder {
	if ib.err != nil {
		return ib
	}
	if dur, isDuration := value.(time.Duration); isDuration {
		value = dur.String()
	}
	ib.payload, ib.err = sjson.SetBytes(ib.payload, "options."+name, value)
	return ib
}

// Payload returns the assembled payload.
func (ib *InteractionBuilder) Payload() ([]byte, error) {
	return ib.payload, ib.err
}
