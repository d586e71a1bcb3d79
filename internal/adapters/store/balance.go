package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileBalanceStore keeps one integer balance per user, each in its own
// <username>.txt under the balance directory. The flat layout is inherited
// from the data this bot already owns in production; the leaderboard scans
// the directory.
type FileBalanceStore struct {
	mu       sync.Mutex
	dir      string
	starting int
}

func NewFileBalanceStore(dir string, starting int) (*FileBalanceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating balance dir: %w", err)
	}

	return &FileBalanceStore{dir: dir, starting: starting}, nil
}

func (s *FileBalanceStore) Get(username string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(username)
}

func (s *FileBalanceStore) Set(username string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(username, amount)
}

func (s *FileBalanceStore) Ensure(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if balance, ok := s.read(username); ok {
		return balance, nil
	}

	if err := s.write(username, s.starting); err != nil {
		return 0, err
	}

	log.Info().Str("user", username).Int("balance", s.starting).Msg("created account")

	return s.starting, nil
}

func (s *FileBalanceStore) All() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("error listing balance dir: %w", err)
	}

	balances := make(map[string]int, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".txt")
		if !ok || e.IsDir() {
			continue
		}
		if balance, ok := s.read(name); ok {
			balances[name] = balance
		}
	}

	return balances, nil
}

func (s *FileBalanceStore) read(username string) (int, bool) {
	if !validUsername(username) {
		return 0, false
	}

	buf, err := os.ReadFile(s.path(username))
	if err != nil {
		return 0, false
	}

	balance, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil {
		log.Warn().Str("user", username).Err(err).Msg("unreadable balance file")
		return 0, false
	}

	return balance, true
}

func (s *FileBalanceStore) write(username string, amount int) error {
	if !validUsername(username) {
		return fmt.Errorf("invalid username %q", username)
	}

	if err := os.WriteFile(s.path(username), []byte(strconv.Itoa(amount)), 0o644); err != nil {
		return fmt.Errorf("error writing balance for %s: %w", username, err)
	}
	return nil
}

func (s *FileBalanceStore) path(username string) string {
	return filepath.Join(s.dir, strings.ToLower(username)+".txt")
}

// validUsername rejects names that would escape the balance directory when
// used as a file name. Server-supplied names are not trusted.
func validUsername(username string) bool {
	if username == "" || username == "." || username == ".." {
		return false
	}
	return !strings.ContainsAny(username, `/\`)
}
