// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.mau.fi/botcmd/convert"
)

// CommandContainer is a collection of command handlers with alias support.
// The processor's top-level commands live in one, and every handler with
// subcommands gets its own nested one.
type CommandContainer[MetaType any] struct {
	registry *convert.Registry
	parent   *Handler[MetaType]
	commands map[string]*Handler[MetaType]
	aliases  map[string]string
	lock     sync.RWMutex
}

// NewCommandContainer creates an empty command container. Handlers with
// parameters can only be registered after the given registry is sealed.
func NewCommandContainer[MetaType any](registry *convert.Registry) *CommandContainer[MetaType] {
	return &CommandContainer[MetaType]{
		registry: registry,
		commands: make(map[string]*Handler[MetaType]),
		aliases:  make(map[string]string),
	}
}

// Register adds the given handlers and their subcommand trees to the
// container. It panics on misconfiguration (non-lowercase or duplicate names,
// alias collisions, unresolvable parameters), as that's always a programming
// error rather than a runtime error.
func (cont *CommandContainer[MetaType]) Register(handlers ...*Handler[MetaType]) {
	cont.lock.Lock()
	defer cont.lock.Unlock()
	for _, handler := range handlers {
		cont.registerOne(handler)
	}
}

func (cont *CommandContainer[MetaType]) registerOne(handler *Handler[MetaType]) {
	if strings.ToLower(handler.Name) != handler.Name {
		panic(fmt.Errorf("command %q is not lowercase", handler.Name))
	} else if handler.Func == nil && len(handler.Subcommands) == 0 {
		panic(fmt.Errorf("command %q has no function and no subcommands", handler.Name))
	} else if existingHandler, alreadyExists := cont.commands[handler.Name]; alreadyExists {
		if existingHandler == handler {
			return
		}
		panic(fmt.Errorf("tried to register the command %q twice", handler.Name))
	} else if existingTarget, aliasExists := cont.aliases[handler.Name]; aliasExists {
		panic(fmt.Errorf("tried to register the command %q, but it's already an alias for %q", handler.Name, existingTarget))
	}
	if len(handler.Parameters) > 0 && !cont.registry.Sealed() {
		panic(fmt.Errorf("tried to register the command %q with parameters before the registry was sealed", handler.Name))
	}
	for _, param := range handler.Parameters {
		param.bind(cont.registry)
	}
	cont.commands[handler.Name] = handler
	for _, alias := range handler.Aliases {
		if strings.ToLower(alias) != alias {
			panic(fmt.Errorf("alias %q of command %q is not lowercase", alias, handler.Name))
		} else if existingHandler, alreadyExists := cont.commands[alias]; alreadyExists {
			panic(fmt.Errorf("tried to register alias %q of %q, but it's already the command %q", alias, handler.Name, existingHandler.Name))
		} else if existingTarget, aliasExists := cont.aliases[alias]; aliasExists && existingTarget != handler.Name {
			panic(fmt.Errorf("tried to register alias %q of %q, but it's already an alias for %q", alias, handler.Name, existingTarget))
		}
		cont.aliases[alias] = handler.Name
	}
	handler.parents = append(handler.parents, cont.parent)
	handler.initSubcommandContainer(cont.registry)
}

// Unregister removes the given handler and its aliases from the container.
// Nothing happens if the name is bound to a different handler.
func (cont *CommandContainer[MetaType]) Unregister(handler *Handler[MetaType]) {
	cont.lock.Lock()
	defer cont.lock.Unlock()
	if cont.commands[handler.Name] != handler {
		return
	}
	delete(cont.commands, handler.Name)
	for _, alias := range handler.Aliases {
		if cont.aliases[alias] == handler.Name {
			delete(cont.aliases, alias)
		}
	}
	if parentIdx := slices.Index(handler.parents, cont.parent); parentIdx >= 0 {
		handler.parents = slices.Delete(handler.parents, parentIdx, parentIdx+1)
	}
}

// GetHandler returns the handler for the given already-lowercased command
// name, resolving aliases. If the name isn't registered, it falls back to the
// handler registered as UnknownCommandName, or nil if there's none.
func (cont *CommandContainer[MetaType]) GetHandler(command string) *Handler[MetaType] {
	if cont == nil {
		return nil
	}
	cont.lock.RLock()
	defer cont.lock.RUnlock()
	handler, ok := cont.commands[command]
	if !ok {
		var target string
		target, ok = cont.aliases[command]
		if ok {
			handler = cont.commands[target]
		} else {
			handler = cont.commands[UnknownCommandName]
		}
	}
	return handler
}
