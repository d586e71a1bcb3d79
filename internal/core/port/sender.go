package port

import "context"

type TextSender interface {
	// Send sends a chat message to the given room. Implementations truncate
	// text that exceeds the server's maximum message length.
	Send(ctx context.Context, room string, text string) error
}
