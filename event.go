// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"context"
	"slices"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"

	"go.mau.fi/botcmd/args"
)

// Source tells which ingestion path produced a command event.
type Source int

const (
	// SourceText means the event came from Processor.Process, i.e. a plain
	// text message that was lexed and converted.
	SourceText Source = iota
	// SourceInteraction means the event came from
	// Processor.ProcessInteraction, i.e. a structured payload whose
	// arguments were converted individually.
	SourceInteraction
)

func (s Source) String() string {
	switch s {
	case SourceText:
		return "text"
	case SourceInteraction:
		return "interaction"
	default:
		return "unknown"
	}
}

// Event is the context for a single command invocation. One is created per
// Process/ProcessInteraction call and passed to prevalidators, pre-funcs,
// hooks and the handler function.
type Event[MetaType any] struct {
	// RawInput is the entire input as received, before any parsing.
	RawInput string
	// View is the lexer cursor over the text input, positioned after
	// everything consumed so far. On the interaction path it's an empty
	// view, as arguments arrive pre-split.
	View *args.StringView

	// Command is the lowercased name the handler was matched by. For
	// subcommands it's the deepest matched name.
	Command string
	// ParentCommands contains the matched names of the parent commands,
	// outermost first. It's empty for top-level commands.
	ParentCommands []string
	// ParentHandlers contains the handlers corresponding to ParentCommands.
	ParentHandlers []*Handler[MetaType]

	// Args holds the converted parameter values in declaration order.
	// Optional parameters that weren't provided hold their Default.
	Args []any
	// NamedArgs holds the same values keyed by parameter name.
	NamedArgs map[string]any

	// Source tells whether this event came from text or an interaction.
	Source Source
	// InvocationID is a unique id for correlating logs and hooks of one
	// invocation.
	InvocationID xid.ID

	Ctx     context.Context
	Log     *zerolog.Logger
	Proc    *Processor[MetaType]
	Handler *Handler[MetaType]
	Meta    MetaType
}

// ShiftWord consumes and returns the next word from the input view. It's
// meant for PreFunc implementations that take arguments between subcommand
// names.
func (evt *Event[MetaType]) ShiftWord() string {
	return evt.View.GetWord()
}

// UnshiftWord puts the most recently consumed word back into the view.
func (evt *Event[MetaType]) UnshiftWord() {
	evt.View.Undo()
}

// Arg returns the named argument of the event cast to T. ok is false if the
// argument doesn't exist, is nil, or has a different type.
func Arg[T any, MetaType any](evt *Event[MetaType], name string) (val T, ok bool) {
	raw, exists := evt.NamedArgs[name]
	if !exists || raw == nil {
		return
	}
	val, ok = raw.(T)
	return
}

// StructuredArgs serializes the parsed invocation into the interaction
// payload format, so a text invocation can be replayed or forwarded through
// ProcessInteraction. Durations are written in their string form and nil
// values are omitted.
func (evt *Event[MetaType]) StructuredArgs() ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "command", append(slices.Clone(evt.ParentCommands), evt.Command))
	if err != nil {
		return nil, err
	}
	if evt.Handler == nil {
		return payload, nil
	}
	for _, param := range evt.Handler.Parameters {
		val, exists := evt.NamedArgs[param.Name]
		if !exists || val == nil {
			continue
		}
		if dur, isDuration := val.(time.Duration); isDuration {
			val = dur.String()
		}
		payload, err = sjson.SetBytes(payload, "options."+param.Name, val)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}
