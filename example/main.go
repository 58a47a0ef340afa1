// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"go.mau.fi/util/exerrors"
	"go.mau.fi/util/exzerolog"
	"go.mau.fi/zeroconfig"
	flag "maunium.net/go/mauflag"

	"go.mau.fi/botcmd"
	"go.mau.fi/botcmd/convert"
)

var token = flag.MakeFull("t", "token", "Discord bot token. Leave empty to run console-only.", "").String()
var prefix = flag.MakeFull("p", "prefix", "Prefix for text message commands.", "!").String()
var wantHelp, _ = flag.MakeHelpFlag()

var writerTypeReadline zeroconfig.WriterType = "botcmd_readline"

// commandMeta tells handlers where an invocation came from and where the
// answer should go. Exactly one of console, message and interaction is set.
type commandMeta struct {
	session     *discordgo.Session
	message     *discordgo.MessageCreate
	interaction *discordgo.InteractionCreate
	console     io.Writer
}

func (meta *commandMeta) reply(format string, args ...any) {
	content := fmt.Sprintf(format, args...)
	switch {
	case meta.console != nil:
		_, _ = fmt.Fprintln(meta.console, content)
	case meta.interaction != nil:
		_ = meta.session.InteractionRespond(meta.interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content},
		})
	case meta.message != nil:
		_, _ = meta.session.ChannelMessageSend(meta.message.ChannelID, content)
	}
}

// notify sends a message outside the interaction response window, e.g. for
// reminders that fire long after the invocation was acknowledged.
func (meta *commandMeta) notify(content string) {
	switch {
	case meta.console != nil:
		_, _ = fmt.Fprintln(meta.console, content)
	case meta.interaction != nil:
		_, _ = meta.session.ChannelMessageSend(meta.interaction.ChannelID, content)
	case meta.message != nil:
		_, _ = meta.session.ChannelMessageSend(meta.message.ChannelID, content)
	}
}

type exampleBot struct {
	proc *botcmd.Processor[*commandMeta]
	ctx  context.Context

	prefixLock sync.RWMutex
	prefix     string
}

func (bot *exampleBot) checkPrefix(ce *botcmd.Event[*commandMeta]) bool {
	bot.prefixLock.RLock()
	pfx := bot.prefix
	bot.prefixLock.RUnlock()
	if !strings.HasPrefix(ce.Command, pfx) {
		return false
	}
	ce.Command = strings.TrimPrefix(ce.Command, pfx)
	return true
}

func (bot *exampleBot) cmdPing(ce *botcmd.Event[*commandMeta]) {
	if ce.Meta.session != nil {
		ce.Meta.reply("Pong! (%dms heartbeat)", ce.Meta.session.HeartbeatLatency().Milliseconds())
	} else {
		ce.Meta.reply("Pong!")
	}
}

func (bot *exampleBot) cmdEcho(ce *botcmd.Event[*commandMeta]) {
	message, _ := botcmd.Arg[string](ce, "message")
	repeat, _ := botcmd.Arg[int64](ce, "repeat")
	// Discord caps messages at 2000 characters.
	if repeat < 1 {
		repeat = 1
	} else if repeat > 10 {
		repeat = 10
	}
	parts := make([]string, repeat)
	for i := range parts {
		parts[i] = message
	}
	ce.Meta.reply("%s", strings.Join(parts, " "))
}

func (bot *exampleBot) cmdRoll(ce *botcmd.Event[*commandMeta]) {
	sides, _ := botcmd.Arg[int64](ce, "sides")
	count, _ := botcmd.Arg[int64](ce, "count")
	if sides < 2 {
		sides = 2
	}
	if count < 1 {
		count = 1
	} else if count > 20 {
		count = 20
	}
	rolls := make([]string, count)
	var total int64
	for i := range rolls {
		roll := rand.Int64N(sides) + 1
		total += roll
		rolls[i] = fmt.Sprintf("%d", roll)
	}
	ce.Meta.reply("🎲 %s (total %d)", strings.Join(rolls, " "), total)
}

func (bot *exampleBot) cmdRemind(ce *botcmd.Event[*commandMeta]) {
	delay, _ := botcmd.Arg[time.Duration](ce, "delay")
	message, _ := botcmd.Arg[string](ce, "message")
	if delay < time.Second {
		ce.Meta.reply("The delay must be at least one second")
		return
	}
	meta := ce.Meta
	time.AfterFunc(delay, func() {
		meta.notify(fmt.Sprintf("⏰ Reminder: %s", message))
	})
	ce.Meta.reply("Reminding you in %s", delay)
}

func (bot *exampleBot) cmdSettingsPrefix(ce *botcmd.Event[*commandMeta]) {
	value, ok := botcmd.Arg[string](ce, "value")
	if !ok || value == "" {
		bot.prefixLock.RLock()
		pfx := bot.prefix
		bot.prefixLock.RUnlock()
		ce.Meta.reply("The current command prefix is %q", pfx)
		return
	}
	bot.prefixLock.Lock()
	bot.prefix = value
	bot.prefixLock.Unlock()
	ce.Meta.reply("Changed the command prefix to %q", value)
}

func (bot *exampleBot) cmdSettingsShow(ce *botcmd.Event[*commandMeta]) {
	bot.prefixLock.RLock()
	pfx := bot.prefix
	bot.prefixLock.RUnlock()
	ce.Meta.reply("Prefix: %q\nCommands:\n%s", pfx, strings.Join(bot.proc.Describe(), "\n"))
}

func (bot *exampleBot) cmdHelp(ce *botcmd.Event[*commandMeta]) {
	ce.Meta.reply("Available commands:\n%s", strings.Join(bot.proc.Describe(), "\n"))
}

func newExampleBot(ctx context.Context) *exampleBot {
	registry := convert.NewRegistry()
	registry.Seal()
	bot := &exampleBot{
		proc:   botcmd.NewProcessor[*commandMeta](registry),
		ctx:    ctx,
		prefix: *prefix,
	}
	bot.proc.PreValidator = botcmd.FuncPreValidator[*commandMeta](bot.checkPrefix)
	builtin := registry.Builtin()
	bot.proc.Register(&botcmd.Handler[*commandMeta]{
		Func:        bot.cmdPing,
		Name:        "ping",
		Description: "Check whether the bot is alive",
	}, &botcmd.Handler[*commandMeta]{
		Func:        bot.cmdEcho,
		Name:        "echo",
		Description: "Repeat a message",
		Parameters: []*botcmd.Parameter{
			{Name: "message", Description: "The message to repeat", Type: builtin.String},
			{Name: "repeat", Description: "How many times to repeat it", Type: builtin.Int, Optional: true, Default: int64(1)},
		},
	}, &botcmd.Handler[*commandMeta]{
		Func:        bot.cmdRoll,
		Name:        "roll",
		Aliases:     []string{"dice"},
		Description: "Roll some dice",
		Parameters: []*botcmd.Parameter{
			{Name: "sides", Description: "Number of sides per die", Type: builtin.Int, Optional: true, Default: int64(6)},
			{Name: "count", Description: "Number of dice to roll", Type: builtin.Int, Optional: true, Default: int64(1)},
		},
	}, &botcmd.Handler[*commandMeta]{
		Func:        bot.cmdRemind,
		Name:        "remind",
		Description: "Set a reminder",
		Parameters: []*botcmd.Parameter{
			{Name: "delay", Description: "How long to wait", Type: builtin.Duration},
			{Name: "message", Description: "What to say", Type: builtin.String, Optional: true, Default: "time is up"},
		},
	}, &botcmd.Handler[*commandMeta]{
		Name:        "settings",
		Description: "Adjust bot settings",
		Subcommands: []*botcmd.Handler[*commandMeta]{{
			Func:        bot.cmdSettingsPrefix,
			Name:        "prefix",
			Description: "Show or change the command prefix",
			Parameters: []*botcmd.Parameter{
				{Name: "value", Description: "The new prefix", Type: builtin.String, Optional: true, Default: ""},
			},
		}, {
			Func:        bot.cmdSettingsShow,
			Name:        "show",
			Description: "Show the current settings",
		}},
	}, &botcmd.Handler[*commandMeta]{
		Func:        bot.cmdHelp,
		Name:        "help",
		Description: "List available commands",
	})
	return bot
}

// slashCommands mirrors the registered handlers as Discord application
// commands. Durations have no native option type, so they go over as strings.
var slashCommands = []*discordgo.ApplicationCommand{{
	Name:        "ping",
	Description: "Check whether the bot is alive",
}, {
	Name:        "echo",
	Description: "Repeat a message",
	Options: []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "message",
		Description: "The message to repeat",
		Required:    true,
	}, {
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "repeat",
		Description: "How many times to repeat it",
	}},
}, {
	Name:        "roll",
	Description: "Roll some dice",
	Options: []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "sides",
		Description: "Number of sides per die",
	}, {
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "count",
		Description: "Number of dice to roll",
	}},
}, {
	Name:        "remind",
	Description: "Set a reminder",
	Options: []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "delay",
		Description: "How long to wait, e.g. 10m or 1h30m",
		Required:    true,
	}, {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "message",
		Description: "What to say",
	}},
}, {
	Name:        "settings",
	Description: "Adjust bot settings",
	Options: []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "prefix",
		Description: "Show or change the command prefix",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "value",
			Description: "The new prefix",
		}},
	}, {
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "show",
		Description: "Show the current settings",
	}},
}}

// interactionPayload flattens a Discord application command interaction into
// the wire form ProcessInteraction accepts. Subcommand and subcommand group
// options become part of the command path.
func interactionPayload(data discordgo.ApplicationCommandInteractionData) ([]byte, error) {
	path := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommand || opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		path = append(path, opts[0].Name)
		opts = opts[0].Options
	}
	builder := botcmd.NewInteraction(path...)
	for _, opt := range opts {
		builder.SetOption(opt.Name, opt.Value)
	}
	return builder.Payload()
}

func (bot *exampleBot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	log := zerolog.Ctx(bot.ctx)
	registered, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, "", slashCommands)
	if err != nil {
		log.Err(err).Msg("Failed to register slash commands")
		return
	}
	log.Info().
		Int("command_count", len(registered)).
		Str("user_id", s.State.User.ID).
		Msg("Connected to Discord and registered slash commands")
}

func (bot *exampleBot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	meta := &commandMeta{session: s, message: m}
	err := bot.proc.Process(bot.ctx, meta, m.Content)
	if err != nil {
		meta.reply("%v", err)
	}
}

func (bot *exampleBot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	meta := &commandMeta{session: s, interaction: i}
	payload, err := interactionPayload(i.ApplicationCommandData())
	if err == nil {
		err = bot.proc.ProcessInteraction(bot.ctx, meta, payload)
	}
	if err != nil {
		meta.reply("%v", err)
	}
}

func main() {
	flag.SetHelpTitles(
		fmt.Sprintf("example - A small command bot built on botcmd %s.", botcmd.Version),
		"example [-h] [-t token] [-p prefix]")
	err := flag.Parse()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp {
		flag.PrintHelp()
		os.Exit(0)
	}

	rl := exerrors.Must(readline.New("> "))
	defer func() {
		_ = rl.Close()
	}()
	zeroconfig.RegisterWriter(writerTypeReadline, func(config *zeroconfig.WriterConfig) (io.Writer, error) {
		return rl.Stdout(), nil
	})
	log := exerrors.Must((&zeroconfig.Config{
		Writers: []zeroconfig.WriterConfig{{
			Type:   writerTypeReadline,
			Format: zeroconfig.LogFormatPrettyColored,
		}},
	}).Compile())
	exzerolog.SetupDefaults(log)
	ctx := log.WithContext(context.Background())

	bot := newExampleBot(ctx)
	if *token != "" {
		dg := exerrors.Must(discordgo.New("Bot " + *token))
		dg.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent
		dg.AddHandler(bot.onReady)
		dg.AddHandler(bot.onMessageCreate)
		dg.AddHandler(bot.onInteractionCreate)
		exerrors.PanicIfNotNil(dg.Open())
		defer func() {
			_ = dg.Close()
		}()
	} else {
		log.Info().Msg("No token given, running console-only")
	}

	stdout := rl.Stdout()
	_, _ = fmt.Fprintf(stdout, "Type commands prefixed with %q, Ctrl-D to exit\n", *prefix)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		meta := &commandMeta{console: stdout}
		err = bot.proc.Process(ctx, meta, line)
		if err != nil {
			_, _ = fmt.Fprintln(stdout, err)
		}
	}
}
