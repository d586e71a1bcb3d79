package fishing

import (
	"strings"
	"sync"

	"fishbot/internal/adapters/store"

	"github.com/rs/zerolog/log"
)

// UserStats tracks one user's fishing history.
type UserStats struct {
	Casts     int    `json:"casts"`
	Catches   int    `json:"catches"`
	Earned    int    `json:"earned"`
	BestFish  string `json:"bestFish,omitempty"`
	BestPrize int    `json:"bestPrize,omitempty"`
}

// StatsStore persists per-user and aggregate fishing stats to a JSON file,
// written through on every cast.
type StatsStore struct {
	mu    sync.Mutex
	path  string
	users map[string]*UserStats
}

func NewStatsStore(path string) (*StatsStore, error) {
	s := &StatsStore{path: path, users: make(map[string]*UserStats)}

	if err := store.LoadJSON(path, &s.users); err != nil {
		return nil, err
	}
	if s.users == nil {
		s.users = make(map[string]*UserStats)
	}

	return s, nil
}

// RecordCast records one cast. An empty fish name means nothing was caught.
func (s *StatsStore) RecordCast(username, fish string, prize int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(username)
	u, ok := s.users[username]
	if !ok {
		u = &UserStats{}
		s.users[username] = u
	}

	u.Casts++
	if fish != "" {
		u.Catches++
		u.Earned += prize
		if prize > u.BestPrize {
			u.BestPrize = prize
			u.BestFish = fish
		}
	}

	if err := store.SaveJSON(s.path, s.users); err != nil {
		log.Error().Err(err).Msg("failed to save fishing stats")
	}
}

// User returns a copy of one user's stats.
func (s *StatsStore) User(username string) (UserStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return UserStats{}, false
	}
	return *u, true
}

// Global aggregates all users' stats.
func (s *StatsStore) Global() UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var g UserStats
	for _, u := range s.users {
		g.Casts += u.Casts
		g.Catches += u.Catches
		g.Earned += u.Earned
		if u.BestPrize > g.BestPrize {
			g.BestPrize = u.BestPrize
			g.BestFish = u.BestFish
		}
	}
	return g
}
