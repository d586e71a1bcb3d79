package domain

import "strings"

// User is a chat user as reported by the Manestream server.
type User struct {
	Username    string
	DisplayName string
	Provider    string
	Avatar      string
	IsBot       bool
}

// Message is a single inbound chat message.
type Message struct {
	ID        string
	User      User
	Content   string
	Timestamp int64
	Room      string
}

// DefaultRoom is the room used when the server does not tag messages.
const DefaultRoom = "public"

// PermissionLevel gates command use. Levels are ordered; a user holding a
// higher level satisfies any lower requirement.
type PermissionLevel int

const (
	Everyone PermissionLevel = iota
	Registered
	Trusted
	Admin
	Owner
)

func (l PermissionLevel) String() string {
	switch l {
	case Everyone:
		return "everyone"
	case Registered:
		return "registered"
	case Trusted:
		return "trusted"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	default:
		return "unknown"
	}
}

// SplitCommand strips the command prefix from a message and splits it into a
// lowercased command name and the remaining argument string. ok is false when
// the message is not a command at all.
func SplitCommand(content, prefix string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	head, tail, _ := strings.Cut(content, " ")
	name = strings.ToLower(strings.TrimPrefix(head, prefix))
	if name == "" {
		return "", "", false
	}

	return name, strings.TrimSpace(tail), true
}
