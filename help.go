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

	"golang.org/x/exp/maps"
)

// Usage renders a one-line usage string for the handler, e.g.
// "roll [sides] [count]" or "settings <subcommand>". Required parameters are
// wrapped in angle brackets and optional ones in square brackets.
func (h *Handler[MetaType]) Usage() string {
	var sb strings.Builder
	sb.WriteString(h.Name)
	for _, param := range h.Parameters {
		if param.Optional {
			_, _ = fmt.Fprintf(&sb, " [%s]", param.Name)
		} else {
			_, _ = fmt.Fprintf(&sb, " <%s>", param.Name)
		}
	}
	if len(h.Subcommands) > 0 {
		sb.WriteString(" <subcommand>")
	}
	return sb.String()
}

// Describe returns a sorted "usage - description" line for every command in
// the container, for building help messages. The unknown command fallback
// handler is excluded.
func (cont *CommandContainer[MetaType]) Describe() []string {
	if cont == nil {
		return nil
	}
	cont.lock.RLock()
	defer cont.lock.RUnlock()
	names := maps.Keys(cont.commands)
	slices.Sort(names)
	descriptions := make([]string, 0, len(names))
	for _, name := range names {
		if name == UnknownCommandName {
			continue
		}
		handler := cont.commands[name]
		line := handler.Usage()
		if handler.Description != "" {
			line += " - " + handler.Description
		}
		descriptions = append(descriptions, line)
	}
	return descriptions
}
