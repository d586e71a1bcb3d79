package fun

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

var conchAnswers = []string{
	"Yes.",
	"No.",
	"Maybe someday.",
	"Ask again.",
	"Definitely.",
	"Absolutely not.",
	"The conch is silent.",
	"Signs point to yes.",
	"Don't count on it.",
	"Without a doubt.",
}

// triggers maps a substring to canned replies sent when a non-command
// message contains it.
var triggers = map[string][]string{
	"good bot": {"Thanks!", ":)"},
	"bad bot":  {":(", "I'm trying my best!"},
	"f":        {"F"},
}

// Module holds the toy commands and the passive message triggers.
type Module struct {
	rng *rand.Rand
}

func Register(r *command.Registry, rng *rand.Rand) *Module {
	m := &Module{rng: rng}

	r.Register(command.Spec{
		Name:        "conch",
		Aliases:     []string{"mcs", "8ball"},
		Description: "Ask the magic conch shell a question",
		Usage:       "!conch <question>",
		Module:      "fun",
		Handler:     m.conch,
	})
	r.Register(command.Spec{
		Name:        "choose",
		Aliases:     []string{"pick"},
		Description: "Choose between options",
		Usage:       "!choose <a> or <b> [or <c>...]",
		Module:      "fun",
		Handler:     m.choose,
	})
	r.Register(command.Spec{
		Name:        "rate",
		Description: "Rate anything out of 10",
		Usage:       "!rate <thing>",
		Module:      "fun",
		Handler:     m.rate,
	})

	return m
}

// Listener answers passive triggers in plain chat. Only exact, whole-message
// matches fire, and a reply never consumes the message.
func (m *Module) Listener(sender port.TextSender) func(ctx context.Context, msg domain.Message) bool {
	return func(ctx context.Context, msg domain.Message) bool {
		replies, ok := triggers[strings.ToLower(strings.TrimSpace(msg.Content))]
		if !ok {
			return false
		}

		room := msg.Room
		if room == "" {
			room = domain.DefaultRoom
		}

		reply := replies[m.rng.Intn(len(replies))]
		if err := sender.Send(ctx, room, reply); err != nil {
			log.Error().Err(err).Msg("trigger reply failed")
		}
		return false
	}
}

func (m *Module) conch(ctx context.Context, inv *command.Invocation, args string) error {
	if strings.TrimSpace(args) == "" {
		return inv.Reply(ctx, "Ask the conch a question!")
	}

	return inv.ReplyMention(ctx, conchAnswers[m.rng.Intn(len(conchAnswers))])
}

func (m *Module) choose(ctx context.Context, inv *command.Invocation, args string) error {
	options := strings.Split(args, " or ")
	if len(options) < 2 {
		return inv.Reply(ctx, "Usage: !choose <a> or <b> [or <c>...]")
	}

	for i := range options {
		options[i] = strings.TrimSpace(options[i])
	}

	return inv.ReplyMention(ctx, "I choose "+options[m.rng.Intn(len(options))])
}

// rate hashes the subject so the same thing always gets the same score.
func (m *Module) rate(ctx context.Context, inv *command.Invocation, args string) error {
	subject := strings.TrimSpace(args)
	if subject == "" {
		return inv.Reply(ctx, "Usage: !rate <thing>")
	}

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(subject)))
	score := h.Sum32() % 11

	return inv.Reply(ctx, fmt.Sprintf("I rate %s a %d/10", subject, score))
}
