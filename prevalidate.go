// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"strings"
)

// PreValidator is a filter that decides whether a text input is a command at
// all. It runs after the first word is extracted but before handler lookup,
// and may rewrite Event.Command (e.g. to strip a prefix). Returning false
// makes the processor silently ignore the input.
//
// PreValidators only run on the text path, interactions are always explicit
// command invocations.
type PreValidator[MetaType any] interface {
	Validate(ce *Event[MetaType]) bool
}

// FuncPreValidator wraps a plain function into a PreValidator.
type FuncPreValidator[MetaType any] func(ce *Event[MetaType]) bool

func (fpv FuncPreValidator[MetaType]) Validate(ce *Event[MetaType]) bool {
	return fpv(ce)
}

// AllPreValidator accepts the input only if all of the wrapped validators
// accept it. Evaluation stops at the first rejection.
type AllPreValidator[MetaType any] []PreValidator[MetaType]

func (apv AllPreValidator[MetaType]) Validate(ce *Event[MetaType]) bool {
	for _, pv := range apv {
		if !pv.Validate(ce) {
			return false
		}
	}
	return true
}

// AnyPreValidator accepts the input if at least one of the wrapped validators
// accepts it. Evaluation stops at the first acceptance.
type AnyPreValidator[MetaType any] []PreValidator[MetaType]

func (apv AnyPreValidator[MetaType]) Validate(ce *Event[MetaType]) bool {
	for _, pv := range apv {
		if pv.Validate(ce) {
			return true
		}
	}
	return false
}

// ValidatePrefixCommand accepts inputs whose first word is exactly the given
// prefix (e.g. `!bot ping` with the prefix `!bot`) and shifts the next word
// into Event.Command.
func ValidatePrefixCommand[MetaType any](prefix string) PreValidator[MetaType] {
	return FuncPreValidator[MetaType](func(ce *Event[MetaType]) bool {
		if ce.Command != prefix {
			return false
		}
		next := strings.ToLower(ce.ShiftWord())
		if next == "" {
			return false
		}
		ce.Command = next
		return true
	})
}

// ValidatePrefixSubstring accepts inputs whose first word starts with the
// given prefix (e.g. `!ping` with the prefix `!`) and strips it from
// Event.Command.
func ValidatePrefixSubstring[MetaType any](prefix string) PreValidator[MetaType] {
	return FuncPreValidator[MetaType](func(ce *Event[MetaType]) bool {
		if !strings.HasPrefix(ce.Command, prefix) {
			return false
		}
		ce.Command = ce.Command[len(prefix):]
		return true
	})
}
