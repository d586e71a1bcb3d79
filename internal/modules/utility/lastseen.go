package utility

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fishbot/internal/adapters/store"

	"github.com/rs/zerolog/log"
)

// LastSeenStore remembers when each user last spoke, persisted as a JSON
// map keyed by lowercase username.
type LastSeenStore struct {
	mu   sync.Mutex
	path string
	seen map[string]time.Time
}

func NewLastSeenStore(path string) (*LastSeenStore, error) {
	s := &LastSeenStore{path: path, seen: make(map[string]time.Time)}

	if err := store.LoadJSON(path, &s.seen); err != nil {
		return nil, err
	}
	if s.seen == nil {
		s.seen = make(map[string]time.Time)
	}

	return s, nil
}

// Touch records that a user spoke just now.
func (s *LastSeenStore) Touch(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[strings.ToLower(username)] = time.Now()

	if err := store.SaveJSON(s.path, s.seen); err != nil {
		log.Error().Err(err).Msg("failed to save last-seen data")
	}
}

// Seen returns when a user last spoke.
func (s *LastSeenStore) Seen(username string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.seen[strings.ToLower(username)]
	return t, ok
}

// formatAgo renders a duration as a coarse "5 minutes ago" string.
func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
