package moderation

import (
	"sort"
	"strings"
	"sync"
	"time"

	"fishbot/internal/adapters/store"
)

// banLogCap bounds the remembered ban list so the file cannot grow forever.
const banLogCap = 1000

type modState struct {
	Bans  []string             `json:"bans"`
	Mutes map[string]time.Time `json:"mutes"`
}

// Store persists the moderation state: the list of users the bot has banned
// and the active mutes with their expiry times. Bans are enforced by the chat
// server; this list exists for !banlist. Mutes are enforced locally by the
// dispatch gate.
type Store struct {
	mu    sync.Mutex
	path  string
	state modState
	now   func() time.Time
}

func NewStore(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}

	if err := store.LoadJSON(path, &s.state); err != nil {
		return nil, err
	}
	if s.state.Mutes == nil {
		s.state.Mutes = make(map[string]time.Time)
	}

	return s, nil
}

func (s *Store) save() error {
	return store.SaveJSON(s.path, &s.state)
}

// RecordBan appends a username to the ban list, dropping the oldest entries
// past the cap.
func (s *Store) RecordBan(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(username)
	for _, b := range s.state.Bans {
		if b == username {
			return nil
		}
	}

	s.state.Bans = append(s.state.Bans, username)
	if len(s.state.Bans) > banLogCap {
		s.state.Bans = s.state.Bans[len(s.state.Bans)-banLogCap:]
	}

	return s.save()
}

// RemoveBan drops a username from the ban list. Reports whether it was
// present.
func (s *Store) RemoveBan(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(username)
	for i, b := range s.state.Bans {
		if b == username {
			s.state.Bans = append(s.state.Bans[:i], s.state.Bans[i+1:]...)
			return true, s.save()
		}
	}

	return false, nil
}

// Bans returns the recorded bans, sorted.
func (s *Store) Bans() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	bans := make([]string, len(s.state.Bans))
	copy(bans, s.state.Bans)
	sort.Strings(bans)
	return bans
}

// Mute silences a user until the given time.
func (s *Store) Mute(username string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Mutes[strings.ToLower(username)] = until
	return s.save()
}

// Unmute lifts a mute. Reports whether the user was muted.
func (s *Store) Unmute(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(username)
	if _, ok := s.state.Mutes[username]; !ok {
		return false, nil
	}
	delete(s.state.Mutes, username)
	return true, s.save()
}

// IsMuted reports whether a user is currently muted. Expired mutes are
// pruned on the way through.
func (s *Store) IsMuted(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(username)
	until, ok := s.state.Mutes[username]
	if !ok {
		return false
	}
	if s.now().After(until) {
		delete(s.state.Mutes, username)
		return false
	}
	return true
}
