// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/constraints"

	"go.mau.fi/botcmd/args"
	"go.mau.fi/botcmd/typegraph"
)

// NewStringConverter converts the next (possibly quoted) word. It can't fail
// to match: any word is a string, including the empty one produced by "".
func NewStringConverter(output typegraph.TypeID) *SimpleConverter[string] {
	return &SimpleConverter[string]{
		OutputType: output,
		Func: func(_ *Context, view *args.StringView) (string, error) {
			return view.GetQuotedWord()
		},
	}
}

// NewIntConverter converts the next word as a base-10 64-bit integer.
func NewIntConverter(output typegraph.TypeID) *SimpleConverter[int64] {
	return IntegerConverter[int64](output)
}

// NewFloatConverter converts the next word as a 64-bit float.
func NewFloatConverter(output typegraph.TypeID) *SimpleConverter[float64] {
	return &SimpleConverter[float64]{
		OutputType: output,
		Func: func(_ *Context, view *args.StringView) (float64, error) {
			word, err := view.GetQuotedWord()
			if err != nil {
				return 0, err
			}
			val, err := strconv.ParseFloat(word, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q is not a number", ErrNoMatch, word)
			}
			return val, nil
		},
	}
}

// NewBoolConverter converts the next word as a boolean. It accepts the same
// spellings in either case: t/true/y/yes/1 and f/false/n/no/0.
func NewBoolConverter(output typegraph.TypeID) *SimpleConverter[bool] {
	return &SimpleConverter[bool]{
		OutputType: output,
		Func: func(_ *Context, view *args.StringView) (bool, error) {
			word, err := view.GetQuotedWord()
			if err != nil {
				return false, err
			}
			switch strings.ToLower(word) {
			case "t", "true", "y", "yes", "1":
				return true, nil
			case "f", "false", "n", "no", "0":
				return false, nil
			default:
				return false, fmt.Errorf("%w: %q is not a boolean", ErrNoMatch, word)
			}
		},
	}
}

// NewDurationConverter converts the next word using time.ParseDuration.
func NewDurationConverter(output typegraph.TypeID) *SimpleConverter[time.Duration] {
	return &SimpleConverter[time.Duration]{
		OutputType: output,
		Func: func(_ *Context, view *args.StringView) (time.Duration, error) {
			word, err := view.GetQuotedWord()
			if err != nil {
				return 0, err
			}
			val, err := time.ParseDuration(word)
			if err != nil {
				return 0, fmt.Errorf("%w: %q is not a duration", ErrNoMatch, word)
			}
			return val, nil
		},
	}
}

// IntegerConverter builds a converter for any signed integer type, rejecting
// values that don't fit in it. Useful for platform ID types that are int64s
// in disguise.
func IntegerConverter[T constraints.Signed](output typegraph.TypeID) *SimpleConverter[T] {
	return &SimpleConverter[T]{
		OutputType: output,
		Func: func(_ *Context, view *args.StringView) (T, error) {
			word, err := view.GetQuotedWord()
			if err != nil {
				return 0, err
			}
			parsed, err := strconv.ParseInt(word, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q is not an integer", ErrNoMatch, word)
			}
			val := T(parsed)
			if int64(val) != parsed {
				return 0, fmt.Errorf("%w: %q doesn't fit in %T", ErrNoMatch, word, val)
			}
			return val, nil
		},
	}
}

// UnsignedConverter is IntegerConverter for unsigned integer types.
func UnsignedConverter[T constraints.Unsigned](output typegraph.TypeID) *SimpleConverter[T] {
	return &SimpleConverter[T]{
		OutputType: output,
		Func: func(_ *Context, view *args.StringView) (T, error) {
			word, err := view.GetQuotedWord()
			if err != nil {
				return 0, err
			}
			parsed, err := strconv.ParseUint(word, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrNoMatch, word)
			}
			val := T(parsed)
			if uint64(val) != parsed {
				return 0, fmt.Errorf("%w: %q doesn't fit in %T", ErrNoMatch, word, val)
			}
			return val, nil
		},
	}
}
