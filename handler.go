// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"go.mau.fi/botcmd/convert"
)

type Handler[MetaType any] struct {
	// Func is the function that is called when the command is executed.
	// It may be nil if the handler only exists to group subcommands.
	Func func(ce *Event[MetaType])

	// Name is the primary name of the command. It must be lowercase.
	Name string
	// Aliases are alternative names for the command. They must be lowercase.
	Aliases []string
	// Subcommands are subcommands of this command.
	Subcommands []*Handler[MetaType]
	// PreFunc is a function that is called before checking subcommands.
	// It can be used to have parameters between subcommands (e.g. `!room <room ID> <command>`).
	// Event.ShiftWord will likely be useful for implementing such parameters.
	PreFunc func(ce *Event[MetaType])

	// Description is a short description of the command.
	Description string
	// Parameters declares the typed arguments of the command. Converters
	// for them are resolved when the handler is registered, which requires
	// the processor's type registry to be sealed.
	Parameters []*Parameter

	// Hooks run around this handler's Func, nested inside the processor's
	// own hooks.
	Hooks Hooks[MetaType]

	parents             []*Handler[MetaType]
	nestedNameCache     []string
	subcommandContainer *CommandContainer[MetaType]
}

// NestedNames returns every full name this handler is reachable by, i.e. the
// cross product of the parent chain's names with this handler's name and
// aliases. The first entry is the canonical one.
func (h *Handler[MetaType]) NestedNames() []string {
	if h.nestedNameCache != nil {
		return h.nestedNameCache
	}
	nestedNames := make([]string, 0, (1+len(h.Aliases))*len(h.parents))
	for _, parent := range h.parents {
		if parent == nil {
			nestedNames = append(nestedNames, h.Name)
			nestedNames = append(nestedNames, h.Aliases...)
		} else {
			for _, parentName := range parent.NestedNames() {
				nestedNames = append(nestedNames, parentName+" "+h.Name)
				for _, alias := range h.Aliases {
					nestedNames = append(nestedNames, parentName+" "+alias)
				}
			}
		}
	}
	h.nestedNameCache = nestedNames
	return nestedNames
}

func (h *Handler[MetaType]) initSubcommandContainer(registry *convert.Registry) {
	if len(h.Subcommands) == 0 {
		h.subcommandContainer = nil
		return
	}
	if h.subcommandContainer == nil {
		h.subcommandContainer = NewCommandContainer[MetaType](registry)
		h.subcommandContainer.parent = h
	}
	h.subcommandContainer.Register(h.Subcommands...)
}

// Subcommand returns the registered subcommand handler for the given
// lowercase name, or nil if there's none.
func (h *Handler[MetaType]) Subcommand(name string) *Handler[MetaType] {
	if h == nil {
		return nil
	}
	return h.subcommandContainer.GetHandler(name)
}
