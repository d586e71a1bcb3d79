package handler

import (
	"context"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Listener sees every inbound message before command parsing. Returning true
// stops all further processing of the message.
type Listener func(ctx context.Context, msg domain.Message) bool

// Fallback interprets a command the registry did not recognize, e.g. the
// user-defined command table. Returning true marks the message handled.
type Fallback func(ctx context.Context, inv *command.Invocation) bool

// Intake turns raw chat messages into command invocations: it runs the
// message listeners, strips the command prefix, splits name from argument
// text, and hands the invocation to the registry. The registry never sees
// raw prefixed text.
type Intake struct {
	registry  *command.Registry
	sender    port.TextSender
	prefix    string
	listeners []Listener
	fallbacks []Fallback
}

func NewIntake(registry *command.Registry, sender port.TextSender) *Intake {
	return &Intake{
		registry: registry,
		sender:   sender,
		prefix:   viper.GetString("bot.command_prefix"),
	}
}

// AddListener appends a message listener. Listeners run in registration
// order, before any command parsing.
func (h *Intake) AddListener(l Listener) {
	h.listeners = append(h.listeners, l)
}

// AddFallback appends a fallback interpreter, tried in registration order
// when the registry reports "not handled".
func (h *Intake) AddFallback(f Fallback) {
	h.fallbacks = append(h.fallbacks, f)
}

// HandleMessage processes one inbound message and reports whether it was
// handled as a command.
func (h *Intake) HandleMessage(ctx context.Context, msg domain.Message) bool {
	for _, l := range h.listeners {
		if l(ctx, msg) {
			return false
		}
	}

	name, args, ok := domain.SplitCommand(msg.Content, h.prefix)
	if !ok {
		return false
	}

	log.Debug().Str("command", name).Str("user", msg.User.Username).Msg("received command")

	inv := command.NewInvocation(msg.User, msg.Content, name, args, msg.Room, h.sender)

	if h.registry.Dispatch(ctx, inv) {
		return true
	}

	for _, f := range h.fallbacks {
		if f(ctx, inv) {
			return true
		}
	}

	log.Debug().Str("command", name).Msg("no handler for command")

	return false
}
