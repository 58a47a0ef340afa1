// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package convert implements typed argument converters: small stateless
// parsers that read words from an args.StringView and produce values of a
// declared type, plus combinators for composing them and a registry that
// resolves a declared parameter type to a converter through the type graph.
package convert

import (
	"context"
	"errors"

	"go.mau.fi/botcmd/args"
	"go.mau.fi/botcmd/typegraph"
)

// ErrNoMatch is the sentinel converters report when the input at the cursor
// doesn't parse as their output type. It means "not mine, maybe someone
// else's": fallback chains move on to the next candidate, anything else is a
// hard failure. Converters may wrap it with detail.
var ErrNoMatch = errors.New("input does not match the expected type")

// Context carries ambient data into converters. Meta is the platform-specific
// payload of the surrounding invocation (a message, an interaction, anything)
// and is never inspected by this package.
type Context struct {
	Ctx  context.Context
	Meta any
}

// Choice is one predefined value a parameter may take, for surfaces that can
// present a fixed menu instead of free-form input.
type Choice struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Converter parses a value of a single declared type from the view.
//
// Converters must be stateless: all per-invocation data arrives through the
// context and the view, and the same converter instance is shared by every
// command that declares the type.
//
// Convert advances the view past whatever it consumed and returns the parsed
// value. When the input at the cursor simply isn't a value of the output
// type, it returns an error matching ErrNoMatch; lexing failures and other
// errors are returned as-is and abort the surrounding parse.
type Converter interface {
	Output() typegraph.TypeID
	Choices() []Choice
	Convert(cctx *Context, view *args.StringView) (any, error)
}

// SimpleConverter adapts a typed function into a Converter.
type SimpleConverter[T any] struct {
	// OutputType is the type the converter produces.
	OutputType typegraph.TypeID
	// Options optionally enumerates the values the converter accepts.
	Options []Choice
	// Func does the actual parsing.
	Func func(cctx *Context, view *args.StringView) (T, error)
}

var _ Converter = (*SimpleConverter[string])(nil)

func (sc *SimpleConverter[T]) Output() typegraph.TypeID {
	return sc.OutputType
}

func (sc *SimpleConverter[T]) Choices() []Choice {
	return sc.Options
}

func (sc *SimpleConverter[T]) Convert(cctx *Context, view *args.StringView) (any, error) {
	val, err := sc.Func(cctx, view)
	if err != nil {
		return nil, err
	}
	return val, nil
}
