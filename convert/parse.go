// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package convert

import (
	"errors"
	"fmt"

	"go.mau.fi/botcmd/args"
	"go.mau.fi/botcmd/typegraph"
)

// NoConverterError is returned by Parse and Resolve when no converter is
// registered for the requested type. It indicates a registration mistake,
// not bad user input.
type NoConverterError struct {
	Type typegraph.TypeID
	Name string
}

func (nce *NoConverterError) Error() string {
	return fmt.Sprintf("no converter registered for %s", nce.Name)
}

// ConversionError is returned by Parse when a converter rejected the input.
// It wraps the converter's own error, so errors.Is(err, ErrNoMatch) tells a
// plain mismatch apart from custom converter failures.
type ConversionError struct {
	Expected     typegraph.TypeID
	ExpectedName string
	// Input is the unconsumed input at the point the conversion started.
	Input     string
	Converter Converter
	Err       error
}

func (ce *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert %q as %s", ce.Input, ce.ExpectedName)
}

func (ce *ConversionError) Unwrap() error {
	return ce.Err
}

// BadInputError is returned by Parse when the input couldn't be lexed at all,
// e.g. an unterminated quoted section.
type BadInputError struct {
	Err error
}

func (bie *BadInputError) Error() string {
	return "bad input: " + bie.Err.Error()
}

func (bie *BadInputError) Unwrap() error {
	return bie.Err
}

// Parse converts the next argument from the view into a value of the declared
// type. The override converter, when non-nil, is used unconditionally (its
// output must have been validated against the declared type at registration
// time); otherwise the type's registered converter is looked up by exact
// identity. On success the view has advanced past the consumed words; use
// Resolve for assignability-based lookup before calling.
func Parse(reg *Registry, cctx *Context, view *args.StringView, declaredType typegraph.TypeID, override Converter) (any, error) {
	conv := override
	if conv == nil {
		var ok bool
		conv, ok = reg.Lookup(declaredType)
		if !ok {
			return nil, &NoConverterError{Type: declaredType, Name: reg.Types().Describe(declaredType)}
		}
	}
	start := view.Index()
	val, err := conv.Convert(cctx, view)
	if err != nil {
		var lexErr *args.LexError
		if errors.As(err, &lexErr) {
			return nil, &BadInputError{Err: err}
		}
		return nil, &ConversionError{
			Expected:     declaredType,
			ExpectedName: reg.Types().Describe(declaredType),
			Input:        view.Buffer()[start:],
			Converter:    conv,
			Err:          err,
		}
	}
	return val, nil
}
