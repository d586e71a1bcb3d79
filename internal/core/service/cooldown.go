package service

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CooldownTracker rate-limits repeated use of a single command by a single
// user. The ledger is memory-only and resets on restart; entries exist only
// for commands with a cooldown that have been successfully executed at least
// once by that user.
type CooldownTracker struct {
	mu      sync.Mutex
	lastUse map[string]map[string]time.Time // command -> user -> last use
	now     func() time.Time
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		lastUse: make(map[string]map[string]time.Time),
		now:     time.Now,
	}
}

// Remaining returns the whole seconds the user still has to wait, rounded up,
// or 0 when the command is ready.
func (t *CooldownTracker) Remaining(command, username string, cooldown time.Duration) int {
	if cooldown <= 0 {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.lastUse[command][strings.ToLower(username)]
	if !ok {
		return 0
	}

	remaining := cooldown - t.now().Sub(last)
	if remaining <= 0 {
		return 0
	}

	return int(math.Ceil(remaining.Seconds()))
}

// Commit records now as the last use. Zero-cooldown commands are skipped so
// the ledger does not fill with entries that can never matter.
func (t *CooldownTracker) Commit(command, username string, cooldown time.Duration) {
	if cooldown <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.lastUse[command]
	if !ok {
		users = make(map[string]time.Time)
		t.lastUse[command] = users
	}

	users[strings.ToLower(username)] = t.now()

	log.Debug().Str("command", command).Str("user", username).Dur("cooldown", cooldown).Msg("cooldown set")
}
