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

// CombineConverter runs an inner converter and pipes its output through a
// transform. The inner converter does the lexing, Process does the rest, so
// a chain like word -> user ID -> member can be built without touching the
// view more than once.
//
// If Process fails, the words the inner converter consumed stay consumed: the
// input was a well-formed R that didn't survive the transform, and offering
// the same words to a later parameter would misparse them. Wrap the result in
// a FallbackConverter to get try-something-else semantics instead.
type CombineConverter[R, T any] struct {
	// Inner produces the intermediate value. Its output type is unrelated to
	// OutputType; it only has to actually yield R values.
	Inner Converter
	// OutputType is the type the combined converter produces.
	OutputType typegraph.TypeID
	// Process transforms the intermediate value into the final one.
	Process func(cctx *Context, value R) (T, error)
}

var _ Converter = (*CombineConverter[string, int])(nil)

func (cc *CombineConverter[R, T]) Output() typegraph.TypeID {
	return cc.OutputType
}

func (cc *CombineConverter[R, T]) Choices() []Choice {
	return cc.Inner.Choices()
}

func (cc *CombineConverter[R, T]) Convert(cctx *Context, view *args.StringView) (any, error) {
	raw, err := cc.Inner.Convert(cctx, view)
	if err != nil {
		return nil, err
	}
	typed, ok := raw.(R)
	if !ok {
		panic(fmt.Errorf("combine converter: inner converter produced %T instead of %T", raw, typed))
	}
	val, err := cc.Process(cctx, typed)
	if err != nil {
		return nil, err
	}
	return val, nil
}

// FallbackConverter tries a list of converters in order and returns the first
// successful result. Every attempt runs against a copy of the view, so a
// failed candidate can't move the cursor: on success exactly the winning
// candidate's consumption is committed, on no match the view is untouched.
//
// A child failing with something other than ErrNoMatch (a lexing error, say)
// aborts the whole chain immediately.
type FallbackConverter struct {
	output   typegraph.TypeID
	children []Converter
}

var _ Converter = (*FallbackConverter)(nil)

// NewFallbackConverter combines converters that produce the same output type.
// It panics when given no children or children with mismatched output types,
// as both are registration-time errors.
func NewFallbackConverter(children ...Converter) *FallbackConverter {
	if len(children) == 0 {
		panic("fallback converter requires at least one child")
	}
	output := children[0].Output()
	for _, child := range children[1:] {
		if child.Output() != output {
			panic(fmt.Errorf("fallback converter children disagree on output type (#%d vs #%d)", output, child.Output()))
		}
	}
	return &FallbackConverter{output: output, children: children}
}

// newResolvedFallback is the registry-internal constructor used by Resolve,
// where the children's outputs are merely assignable to the declared type
// rather than identical to it.
func newResolvedFallback(output typegraph.TypeID, children []Converter) *FallbackConverter {
	return &FallbackConverter{output: output, children: children}
}

func (fc *FallbackConverter) Output() typegraph.TypeID {
	return fc.output
}

// Choices returns the concatenated choices of all children, or nil if any
// child is free-form (a partial menu would be a lie).
func (fc *FallbackConverter) Choices() []Choice {
	var combined []Choice
	for _, child := range fc.children {
		choices := child.Choices()
		if choices == nil {
			return nil
		}
		combined = append(combined, choices...)
	}
	return combined
}

func (fc *FallbackConverter) Convert(cctx *Context, view *args.StringView) (any, error) {
	for _, child := range fc.children {
		attempt := view.Copy()
		val, err := child.Convert(cctx, attempt)
		if err == nil {
			view.MergeFrom(attempt)
			return val, nil
		} else if !errors.Is(err, ErrNoMatch) {
			return nil, err
		}
	}
	return nil, ErrNoMatch
}
