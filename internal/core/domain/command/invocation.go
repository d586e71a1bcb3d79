package command

import (
	"context"
	"strings"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/port"

	"github.com/gofrs/uuid/v5"
)

// Invocation is one parsed, ready-to-dispatch occurrence of a command. It is
// created fresh per message, owned by the Dispatch call that created it, and
// discarded afterwards.
type Invocation struct {
	// ID correlates every log line of a single dispatch.
	ID   uuid.UUID
	User domain.User
	// Message is the full raw message text, prefix included.
	Message string
	// Command is the name as typed, lowercased. Alias resolution is not
	// reflected here.
	Command string
	// Args is the remainder of the message after the command word.
	Args string
	// ArgsList is Args split on whitespace.
	ArgsList []string
	Room     string

	sender port.TextSender
}

func NewInvocation(user domain.User, message, name, args, room string, sender port.TextSender) *Invocation {
	if room == "" {
		room = domain.DefaultRoom
	}

	id, _ := uuid.NewV4()

	return &Invocation{
		ID:       id,
		User:     user,
		Message:  message,
		Command:  strings.ToLower(name),
		Args:     args,
		ArgsList: strings.Fields(args),
		Room:     room,
		sender:   sender,
	}
}

// Reply sends text to the room the command came from.
func (i *Invocation) Reply(ctx context.Context, text string) error {
	return i.sender.Send(ctx, i.Room, text)
}

// ReplyMention is Reply with an "@displayName:" marker prepended.
func (i *Invocation) ReplyMention(ctx context.Context, text string) error {
	return i.sender.Send(ctx, i.Room, "@"+i.User.DisplayName+": "+text)
}
