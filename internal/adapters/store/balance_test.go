package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceStoreGetMissing(t *testing.T) {
	s, err := NewFileBalanceStore(t.TempDir(), 100)
	require.NoError(t, err)

	_, ok := s.Get("somepony")
	assert.False(t, ok)
}

func TestBalanceStoreSetAndGet(t *testing.T) {
	s, err := NewFileBalanceStore(t.TempDir(), 100)
	require.NoError(t, err)

	require.NoError(t, s.Set("somepony", 42))

	balance, ok := s.Get("somepony")
	require.True(t, ok)
	assert.Equal(t, 42, balance)
}

func TestBalanceStoreEnsureCreatesWithStartingBalance(t *testing.T) {
	s, err := NewFileBalanceStore(t.TempDir(), 100)
	require.NoError(t, err)

	balance, err := s.Ensure("somepony")
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	// A second Ensure keeps the existing balance.
	require.NoError(t, s.Set("somepony", 7))
	balance, err = s.Ensure("somepony")
	require.NoError(t, err)
	assert.Equal(t, 7, balance)
}

func TestBalanceStoreUsernameCaseInsensitive(t *testing.T) {
	s, err := NewFileBalanceStore(t.TempDir(), 100)
	require.NoError(t, err)

	require.NoError(t, s.Set("SomePony", 55))

	balance, ok := s.Get("somepony")
	require.True(t, ok)
	assert.Equal(t, 55, balance)
}

func TestBalanceStoreAll(t *testing.T) {
	s, err := NewFileBalanceStore(t.TempDir(), 100)
	require.NoError(t, err)

	require.NoError(t, s.Set("apple", 10))
	require.NoError(t, s.Set("berry", 20))

	balances, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"apple": 10, "berry": 20}, balances)
}

func TestBalanceStoreAllSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileBalanceStore(dir, 100)
	require.NoError(t, err)

	require.NoError(t, s.Set("apple", 10))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("not a number"), 0o644))

	balances, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"apple": 10}, balances)
}

func TestBalanceStoreRejectsPathEscapes(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileBalanceStore(filepath.Join(dir, "balances"), 100)
	require.NoError(t, err)

	for _, name := range []string{"../evil", "a/b", `a\b`, "..", ".", ""} {
		assert.Error(t, s.Set(name, 5), "name %q", name)

		_, ok := s.Get(name)
		assert.False(t, ok, "name %q", name)
	}

	// Nothing escaped the balance directory.
	_, err = os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestBalanceStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewFileBalanceStore(dir, 100)
	require.NoError(t, err)
	require.NoError(t, s1.Set("somepony", 1234))

	s2, err := NewFileBalanceStore(dir, 100)
	require.NoError(t, err)

	balance, ok := s2.Get("somepony")
	require.True(t, ok)
	assert.Equal(t, 1234, balance)
}
