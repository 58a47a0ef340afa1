// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"sync"
)

// Hooks holds observer functions that run around command execution. Both the
// processor and individual handlers embed it: processor-level pre hooks run
// first and processor-level post hooks run last, with the handler's own hooks
// nested inside. Hooks observe the event and must not be used for control
// flow, use a PreValidator or PreFunc to stop processing instead.
type Hooks[MetaType any] struct {
	hookLock sync.RWMutex
	preCall  []func(ce *Event[MetaType])
	postCall []func(ce *Event[MetaType])
}

// OnPreCall registers a hook that runs after arguments are parsed, right
// before the handler function is called.
func (h *Hooks[MetaType]) OnPreCall(fn func(ce *Event[MetaType])) {
	h.hookLock.Lock()
	defer h.hookLock.Unlock()
	h.preCall = append(h.preCall, fn)
}

// OnPostCall registers a hook that runs after the handler function returns.
// Post hooks don't run if the handler panics.
func (h *Hooks[MetaType]) OnPostCall(fn func(ce *Event[MetaType])) {
	h.hookLock.Lock()
	defer h.hookLock.Unlock()
	h.postCall = append(h.postCall, fn)
}

func (h *Hooks[MetaType]) runPreCall(ce *Event[MetaType]) {
	h.hookLock.RLock()
	defer h.hookLock.RUnlock()
	for _, fn := range h.preCall {
		fn(ce)
	}
}

func (h *Hooks[MetaType]) runPostCall(ce *Event[MetaType]) {
	h.hookLock.RLock()
	defer h.hookLock.RUnlock()
	for _, fn := range h.postCall {
		fn(ce)
	}
}
