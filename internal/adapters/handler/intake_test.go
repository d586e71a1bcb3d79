package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"

	"github.com/spf13/viper"
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

type allowAll struct{}

func (allowAll) Check(string, domain.PermissionLevel) bool { return true }
func (allowAll) LevelOf(string) domain.PermissionLevel     { return domain.Owner }

type noCooldowns struct{}

func (noCooldowns) Remaining(string, string, time.Duration) int { return 0 }
func (noCooldowns) Commit(string, string, time.Duration)        {}

func testIntake(t *testing.T) (*Intake, *command.Registry, *mockSender) {
	t.Helper()

	viper.Reset()
	viper.Set("bot.command_prefix", "!")

	registry := command.NewRegistry(allowAll{}, noCooldowns{})
	sender := &mockSender{}
	return NewIntake(registry, sender), registry, sender
}

func testMessage(content string) domain.Message {
	return domain.Message{
		ID:      "m1",
		User:    domain.User{Username: "somepony", DisplayName: "Somepony"},
		Content: content,
		Room:    "public",
	}
}

func TestHandleMessageDispatchesCommand(t *testing.T) {
	intake, registry, sender := testIntake(t)

	registry.Register(command.Spec{Name: "ping", Handler: func(ctx context.Context, inv *command.Invocation, _ string) error {
		return inv.Reply(ctx, "Pong!")
	}})

	assert.True(t, intake.HandleMessage(context.Background(), testMessage("!ping")))
	assert.Equal(t, []string{"Pong!"}, sender.replies)
}

func TestHandleMessageIgnoresPlainChat(t *testing.T) {
	intake, _, sender := testIntake(t)

	assert.False(t, intake.HandleMessage(context.Background(), testMessage("hello there")))
	assert.Empty(t, sender.replies)
}

func TestHandleMessageUnknownCommand(t *testing.T) {
	intake, _, sender := testIntake(t)

	assert.False(t, intake.HandleMessage(context.Background(), testMessage("!nope")))
	assert.Empty(t, sender.replies)
}

func TestListenerStopsProcessing(t *testing.T) {
	intake, registry, _ := testIntake(t)

	handlerRan := false
	registry.Register(command.Spec{Name: "ping", Handler: func(_ context.Context, _ *command.Invocation, _ string) error {
		handlerRan = true
		return nil
	}})

	intake.AddListener(func(_ context.Context, _ domain.Message) bool {
		return true
	})

	assert.False(t, intake.HandleMessage(context.Background(), testMessage("!ping")))
	assert.False(t, handlerRan)
}

func TestListenerPassThrough(t *testing.T) {
	intake, registry, _ := testIntake(t)

	var seen []string
	registry.Register(command.Spec{Name: "ping", Handler: func(_ context.Context, _ *command.Invocation, _ string) error {
		return nil
	}})

	intake.AddListener(func(_ context.Context, msg domain.Message) bool {
		seen = append(seen, msg.Content)
		return false
	})

	assert.True(t, intake.HandleMessage(context.Background(), testMessage("!ping")))
	assert.Equal(t, []string{"!ping"}, seen)
}

func TestFallbackTriedAfterRegistry(t *testing.T) {
	intake, _, _ := testIntake(t)

	var got string
	intake.AddFallback(func(_ context.Context, inv *command.Invocation) bool {
		got = inv.Command
		return true
	})

	assert.True(t, intake.HandleMessage(context.Background(), testMessage("!greet")))
	assert.Equal(t, "greet", got)
}

func TestFallbackNotTriedForRegisteredCommand(t *testing.T) {
	intake, registry, _ := testIntake(t)

	registry.Register(command.Spec{Name: "ping", Handler: func(_ context.Context, _ *command.Invocation, _ string) error {
		return nil
	}})

	fallbackRan := false
	intake.AddFallback(func(_ context.Context, _ *command.Invocation) bool {
		fallbackRan = true
		return true
	})

	require.True(t, intake.HandleMessage(context.Background(), testMessage("!ping")))
	assert.False(t, fallbackRan)
}

func TestFallbacksTriedInOrder(t *testing.T) {
	intake, _, _ := testIntake(t)

	var order []string
	intake.AddFallback(func(_ context.Context, _ *command.Invocation) bool {
		order = append(order, "first")
		return false
	})
	intake.AddFallback(func(_ context.Context, _ *command.Invocation) bool {
		order = append(order, "second")
		return true
	})

	assert.True(t, intake.HandleMessage(context.Background(), testMessage("!greet")))
	assert.Equal(t, []string{"first", "second"}, order)
}
