package economy

import (
	"context"
	"sync"
	"testing"
	"time"

	"fishbot/internal/adapters/store"
	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mu      sync.Mutex
	replies []string
}

func (m *mockSender) Send(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, text)
	return nil
}

func (m *mockSender) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return ""
	}
	return m.replies[len(m.replies)-1]
}

type allowAll struct{}

func (allowAll) Check(string, domain.PermissionLevel) bool { return true }
func (allowAll) LevelOf(string) domain.PermissionLevel     { return domain.Owner }

type noCooldowns struct{}

func (noCooldowns) Remaining(string, string, time.Duration) int { return 0 }
func (noCooldowns) Commit(string, string, time.Duration)        {}

func testSetup(t *testing.T) (*command.Registry, *store.FileBalanceStore, *mockSender) {
	t.Helper()

	balances, err := store.NewFileBalanceStore(t.TempDir(), 100)
	require.NoError(t, err)

	registry := command.NewRegistry(allowAll{}, noCooldowns{})
	Register(registry, balances)

	return registry, balances, &mockSender{}
}

func dispatch(t *testing.T, r *command.Registry, sender *mockSender, username, name, args string) {
	t.Helper()

	user := domain.User{Username: username, DisplayName: username}
	inv := command.NewInvocation(user, "", name, args, "", sender)
	require.True(t, r.Dispatch(context.Background(), inv))
}

func TestBalanceCreatesAccount(t *testing.T) {
	registry, balances, sender := testSetup(t)

	dispatch(t, registry, sender, "somepony", "bongbux", "")
	assert.Contains(t, sender.last(), "Welcome")

	balance, ok := balances.Get("somepony")
	require.True(t, ok)
	assert.Equal(t, 100, balance)

	dispatch(t, registry, sender, "somepony", "bongbux", "")
	assert.Contains(t, sender.last(), "100 BongBux")
}

func TestGiveTransfers(t *testing.T) {
	registry, balances, sender := testSetup(t)

	require.NoError(t, balances.Set("somepony", 100))
	require.NoError(t, balances.Set("otherpony", 50))

	dispatch(t, registry, sender, "somepony", "give", "@OtherPony 30")

	balance, _ := balances.Get("somepony")
	assert.Equal(t, 70, balance)
	balance, _ = balances.Get("otherpony")
	assert.Equal(t, 80, balance)
}

func TestGiveRejectsOverdraft(t *testing.T) {
	registry, balances, sender := testSetup(t)

	require.NoError(t, balances.Set("somepony", 10))
	require.NoError(t, balances.Set("otherpony", 0))

	dispatch(t, registry, sender, "somepony", "give", "otherpony 30")
	assert.Contains(t, sender.last(), "only have 10")

	balance, _ := balances.Get("somepony")
	assert.Equal(t, 10, balance)
}

func TestGiveRejectsSelf(t *testing.T) {
	registry, balances, sender := testSetup(t)

	require.NoError(t, balances.Set("somepony", 100))

	dispatch(t, registry, sender, "somepony", "give", "somepony 30")
	assert.Contains(t, sender.last(), "yourself")

	balance, _ := balances.Get("somepony")
	assert.Equal(t, 100, balance)
}

func TestGiveRejectsBadAmounts(t *testing.T) {
	registry, balances, sender := testSetup(t)

	require.NoError(t, balances.Set("somepony", 100))
	require.NoError(t, balances.Set("otherpony", 0))

	dispatch(t, registry, sender, "somepony", "give", "otherpony -5")
	assert.Contains(t, sender.last(), "positive")

	dispatch(t, registry, sender, "somepony", "give", "otherpony lots")
	assert.Contains(t, sender.last(), "number")
}

func TestLeaderboard(t *testing.T) {
	registry, balances, sender := testSetup(t)

	require.NoError(t, balances.Set("apple", 300))
	require.NoError(t, balances.Set("berry", 100))
	require.NoError(t, balances.Set("cherry", 200))

	dispatch(t, registry, sender, "somepony", "leaderboard", "")

	assert.Contains(t, sender.last(), "1. apple: 300")
	assert.Contains(t, sender.last(), "2. cherry: 200")
	assert.Contains(t, sender.last(), "3. berry: 100")
}

func TestSetbux(t *testing.T) {
	registry, balances, sender := testSetup(t)

	dispatch(t, registry, sender, "adminpony", "setbux", "somepony 777")

	balance, ok := balances.Get("somepony")
	require.True(t, ok)
	assert.Equal(t, 777, balance)
}

func TestCleanTarget(t *testing.T) {
	assert.Equal(t, "somepony", cleanTarget("@SomePony"))
	assert.Equal(t, "somepony", cleanTarget("somepony"))
}
