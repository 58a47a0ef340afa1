// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/botcmd"
	"go.mau.fi/botcmd/convert"
	"go.mau.fi/botcmd/typegraph"
)

func noopHandler(name string, aliases ...string) *botcmd.Handler[string] {
	return &botcmd.Handler[string]{
		Name:    name,
		Aliases: aliases,
		Func:    func(ce *botcmd.Event[string]) {},
	}
}

func TestCommandContainer_Register_Panics(t *testing.T) {
	reg := convert.NewRegistry()
	customType, err := reg.Types().AddNominal(typegraph.Nominal{
		Name:       "channel",
		Supertypes: []typegraph.TypeID{reg.Builtin().Object},
	})
	require.NoError(t, err)

	unsealed := botcmd.NewProcessor[string](reg)
	assert.PanicsWithError(t, `tried to register the command "ping" with parameters before the registry was sealed`, func() {
		unsealed.Register(&botcmd.Handler[string]{
			Name:       "ping",
			Func:       func(ce *botcmd.Event[string]) {},
			Parameters: []*botcmd.Parameter{{Name: "x", Type: reg.Builtin().String}},
		})
	})

	reg.Seal()
	proc := botcmd.NewProcessor[string](reg)
	proc.Register(noopHandler("ping", "p"))

	assert.Panics(t, func() {
		proc.Register(noopHandler("PING"))
	}, "non-lowercase name")
	assert.Panics(t, func() {
		proc.Register(noopHandler("ping"))
	}, "duplicate command")
	assert.Panics(t, func() {
		proc.Register(noopHandler("p"))
	}, "command name shadowing an alias")
	assert.Panics(t, func() {
		proc.Register(noopHandler("pong", "ping"))
	}, "alias shadowing a command")
	assert.Panics(t, func() {
		proc.Register(&botcmd.Handler[string]{Name: "empty"})
	}, "no function and no subcommands")
	assert.Panics(t, func() {
		proc.Register(&botcmd.Handler[string]{
			Name: "broken",
			Func: func(ce *botcmd.Event[string]) {},
			Parameters: []*botcmd.Parameter{
				{Name: "Bad Name", Type: reg.Builtin().String},
			},
		})
	}, "invalid parameter name")
	assert.Panics(t, func() {
		proc.Register(&botcmd.Handler[string]{
			Name: "orphan",
			Func: func(ce *botcmd.Event[string]) {},
			Parameters: []*botcmd.Parameter{
				{Name: "target", Type: customType},
			},
		})
	}, "no converter can produce the parameter type")
	assert.Panics(t, func() {
		proc.Register(&botcmd.Handler[string]{
			Name: "mismatch",
			Func: func(ce *botcmd.Event[string]) {},
			Parameters: []*botcmd.Parameter{
				{Name: "flag", Type: reg.Builtin().Bool, Converter: convert.NewIntConverter(reg.Builtin().Int)},
			},
		})
	}, "override output not assignable to the parameter type")
}

func TestCommandContainer_Register_Idempotent(t *testing.T) {
	proc := botcmd.NewProcessor[string](nil)
	handler := noopHandler("ping")
	proc.Register(handler)
	proc.Register(handler)
	assert.Equal(t, []string{"ping"}, handler.NestedNames())
}

func TestCommandContainer_GetHandler(t *testing.T) {
	proc := botcmd.NewProcessor[string](nil)
	handler := noopHandler("ping", "p")
	proc.Register(handler)

	assert.Same(t, handler, proc.GetHandler("ping"))
	assert.Same(t, handler, proc.GetHandler("p"))
	assert.Nil(t, proc.GetHandler("pong"))

	var nilContainer *botcmd.CommandContainer[string]
	assert.Nil(t, nilContainer.GetHandler("ping"))
}

func TestCommandContainer_Unregister(t *testing.T) {
	proc := botcmd.NewProcessor[string](nil)
	handler := noopHandler("ping", "p")
	proc.Register(handler)
	proc.Unregister(handler)

	assert.Nil(t, proc.GetHandler("ping"))
	assert.Nil(t, proc.GetHandler("p"))

	// Unregistering someone else's name must not remove the real handler.
	other := noopHandler("pong")
	proc.Register(other)
	proc.Unregister(noopHandler("pong"))
	assert.Same(t, other, proc.GetHandler("pong"))
}

func TestHandler_NestedNames(t *testing.T) {
	proc := botcmd.NewProcessor[string](nil)
	enable := noopHandler("enable", "on")
	notifications := &botcmd.Handler[string]{
		Name:        "notifications",
		Subcommands: []*botcmd.Handler[string]{enable},
	}
	settings := &botcmd.Handler[string]{
		Name:        "settings",
		Subcommands: []*botcmd.Handler[string]{notifications},
	}
	proc.Register(settings)

	assert.Equal(t, []string{"settings"}, settings.NestedNames())
	assert.Equal(t, []string{"settings notifications"}, notifications.NestedNames())
	assert.Equal(t, []string{"settings notifications enable", "settings notifications on"}, enable.NestedNames())
}

func TestHandler_Subcommand(t *testing.T) {
	proc := botcmd.NewProcessor[string](nil)
	sub := noopHandler("add")
	parent := &botcmd.Handler[string]{Name: "tag", Subcommands: []*botcmd.Handler[string]{sub}}
	proc.Register(parent)

	assert.Same(t, sub, parent.Subcommand("add"))
	assert.Nil(t, parent.Subcommand("remove"))
	assert.Nil(t, sub.Subcommand("anything"), "leaf handlers have no subcommand container")
}

func TestHandler_Usage(t *testing.T) {
	bot := newTestBot(t)
	assert.Equal(t, "echo <message> [repeat]", bot.proc.GetHandler("echo").Usage())
	assert.Equal(t, "ping", bot.proc.GetHandler("ping").Usage())
	assert.Equal(t, "settings <subcommand>", bot.proc.GetHandler("settings").Usage())
	assert.Equal(t, "tag <name> <subcommand>", bot.proc.GetHandler("tag").Usage())
}

func TestCommandContainer_Describe(t *testing.T) {
	bot := newTestBot(t)
	bot.proc.Register(&botcmd.Handler[string]{Name: botcmd.UnknownCommandName, Func: bot.record})
	bot.proc.GetHandler("roll").Description = "Roll dice"

	lines := bot.proc.Describe()
	assert.Equal(t, []string{
		"echo <message> [repeat]",
		"mute <user> [hard] [duration]",
		"peek <thing>",
		"ping",
		"roll [sides] [count] - Roll dice",
		"room <subcommand>",
		"settings <subcommand>",
		"tag <name> <subcommand>",
	}, lines)
}
