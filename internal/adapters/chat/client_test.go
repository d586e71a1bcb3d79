package chat

import (
	"context"
	"testing"
	"unicode/utf8"

	"fishbot/internal/core/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler MessageHandler) *Client {
	t.Helper()

	viper.Reset()
	viper.Set("bot.username", "fishbot")
	viper.Set("bot.display_name", "FishBot")
	viper.Set("chat.max_message_length", 500)

	return NewClient(handler)
}

func TestHandleMessageFeedsHandler(t *testing.T) {
	var got domain.Message
	c := testClient(t, func(_ context.Context, msg domain.Message) bool {
		got = msg
		return true
	})

	c.handleMessage(context.Background(), wireMessage{
		ID:      "m1",
		User:    wireUser{Username: "somepony", DisplayName: "Somepony"},
		Content: "!ping",
		Room:    "public",
	})

	assert.Equal(t, "!ping", got.Content)
	assert.Equal(t, "somepony", got.User.Username)

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Messages)
	assert.EqualValues(t, 1, stats.Commands)
}

func TestHandleMessageSkipsBots(t *testing.T) {
	called := false
	c := testClient(t, func(_ context.Context, _ domain.Message) bool {
		called = true
		return false
	})

	c.handleMessage(context.Background(), wireMessage{
		User:    wireUser{Username: "otherbot", IsBot: true},
		Content: "!ping",
	})
	c.handleMessage(context.Background(), wireMessage{
		User:    wireUser{Username: "FishBot"},
		Content: "!ping",
	})

	assert.False(t, called)
	assert.Zero(t, c.Stats().Messages)
}

func TestHandleMessageDefaultsDisplayName(t *testing.T) {
	var got domain.Message
	c := testClient(t, func(_ context.Context, msg domain.Message) bool {
		got = msg
		return false
	})

	c.handleMessage(context.Background(), wireMessage{
		User:    wireUser{Username: "somepony"},
		Content: "hello",
	})

	assert.Equal(t, "somepony", got.User.DisplayName)
}

func TestSendNotConnected(t *testing.T) {
	c := testClient(t, nil)

	err := c.Send(context.Background(), "public", "hello")
	require.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestTruncate(t *testing.T) {
	type TestCase struct {
		description string
		text        string
		max         int
		want        string
	}

	testCases := []TestCase{
		{
			description: "short text untouched",
			text:        "hello",
			max:         500,
			want:        "hello",
		},
		{
			description: "zero max means unlimited",
			text:        "hello",
			max:         0,
			want:        "hello",
		},
		{
			description: "long text gets ellipsis",
			text:        "hello there everypony",
			max:         10,
			want:        "hello t...",
		},
		{
			description: "exact fit untouched",
			text:        "hello",
			max:         5,
			want:        "hello",
		},
		{
			description: "tiny max drops the ellipsis",
			text:        "hello",
			max:         2,
			want:        "he",
		},
		{
			description: "multi-byte runes are not split",
			text:        "ééééé",
			max:         7,
			want:        "éé...",
		},
		{
			description: "tiny max still cuts on a rune boundary",
			text:        "ééééé",
			max:         3,
			want:        "é",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			got := truncate(testCase.text, testCase.max)

			assert.Equal(t, testCase.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), max(testCase.max, len(testCase.text)))
		})
	}
}

func TestSetOnline(t *testing.T) {
	c := testClient(t, nil)

	c.setOnline([]wireUser{
		{Username: "SomePony"},
		{Username: "otherpony"},
	})

	users := c.OnlineUsers()
	assert.Len(t, users, 2)
	assert.Contains(t, users, "somepony")
	assert.Equal(t, 2, c.Stats().Online)
}
