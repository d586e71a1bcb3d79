package port

import (
	"time"

	"fishbot/internal/core/domain"
)

type Permissions interface {
	// Check reports whether the user satisfies the required permission level.
	Check(username string, level domain.PermissionLevel) bool
	// LevelOf returns the highest level the user currently qualifies for.
	// Used for listing and filtering, not for dispatch gating.
	LevelOf(username string) domain.PermissionLevel
}

type Cooldowns interface {
	// Remaining returns the whole seconds the user still has to wait before
	// using the command again, or 0 when the command is ready.
	Remaining(command, username string, cooldown time.Duration) int
	// Commit records now as the user's last successful use of the command.
	// No-op for commands without a cooldown.
	Commit(command, username string, cooldown time.Duration)
}
