package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"fishbot/internal/core/domain"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// MessageHandler receives every inbound chat message that is not the bot's
// own. It reports whether the message was handled as a command.
type MessageHandler func(ctx context.Context, msg domain.Message) bool

// Client maintains the websocket connection to the Manestream chat server,
// feeds inbound messages to a handler, and implements port.TextSender for
// outbound text. It reconnects forever with a capped backoff.
type Client struct {
	url      string
	apiKey   string
	identity domain.User
	maxLen   int

	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration

	handler MessageHandler

	mu   sync.Mutex
	conn *websocket.Conn

	onlineMu sync.RWMutex
	online   map[string]domain.User

	start      time.Time
	messages   atomic.Int64
	commands   atomic.Int64
	reconnects atomic.Int64
}

// Stats is a snapshot of the client's counters, consumed by the utility
// commands.
type Stats struct {
	Uptime     time.Duration
	Connected  bool
	Messages   int64
	Commands   int64
	Reconnects int64
	Online     int
}

func NewClient(handler MessageHandler) *Client {
	return &Client{
		url:    viper.GetString("chat.server_url"),
		apiKey: viper.GetString("chat.api_key"),
		identity: domain.User{
			Username:    viper.GetString("bot.username"),
			DisplayName: viper.GetString("bot.display_name"),
			Avatar:      viper.GetString("bot.avatar"),
			IsBot:       true,
		},
		maxLen:            viper.GetInt("chat.max_message_length"),
		reconnectDelay:    viper.GetDuration("chat.reconnect_delay"),
		maxReconnectDelay: viper.GetDuration("chat.max_reconnect_delay"),
		handler:           handler,
		online:            make(map[string]domain.User),
		start:             time.Now(),
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type wireUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Provider    string `json:"provider"`
	Avatar      string `json:"avatar"`
	IsBot       bool   `json:"isBot"`
}

type wireMessage struct {
	ID        string   `json:"id"`
	User      wireUser `json:"user"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
	Room      string   `json:"room,omitempty"`
}

type authPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	IsBot       bool   `json:"isBot"`
	APIKey      string `json:"apiKey"`
}

type outboundMessage struct {
	ID      string `json:"id"`
	Room    string `json:"room"`
	Content string `json:"content"`
}

// Run connects and processes messages until the context is cancelled,
// reconnecting on any connection failure.
func (c *Client) Run(ctx context.Context) error {
	delay := c.reconnectDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.reconnects.Add(1)
		log.Warn().Err(err).Dur("retry", delay).Int64("reconnect", c.reconnects.Load()).
			Msg("disconnected from chat server")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.maxReconnectDelay {
			delay = c.maxReconnectDelay
		}
	}
}

// session runs one connection from dial to failure.
func (c *Client) session(ctx context.Context) error {
	log.Info().Str("url", c.url).Msg("connecting to chat server")

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.CloseNow()

	auth, err := json.Marshal(authPayload{
		Username:    c.identity.Username,
		DisplayName: c.identity.DisplayName,
		Avatar:      c.identity.Avatar,
		IsBot:       true,
		APIKey:      c.apiKey,
	})
	if err != nil {
		return fmt.Errorf("encoding auth payload: %w", err)
	}

	if err := wsjson.Write(ctx, conn, envelope{Event: "auth", Data: auth}); err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}

	c.setConn(conn)
	defer c.setConn(nil)

	log.Info().Str("url", c.url).Msg("connected")

	for {
		var env envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		c.handleEvent(ctx, env)
	}
}

func (c *Client) handleEvent(ctx context.Context, env envelope) {
	switch env.Event {
	case "message":
		var wm wireMessage
		if err := json.Unmarshal(env.Data, &wm); err != nil {
			log.Warn().Err(err).Msg("malformed message event")
			return
		}
		c.handleMessage(ctx, wm)
	case "users":
		var users []wireUser
		if err := json.Unmarshal(env.Data, &users); err != nil {
			log.Warn().Err(err).Msg("malformed users event")
			return
		}
		c.setOnline(users)
	case "history":
		// History is never processed as commands.
	case "system":
		log.Info().RawJSON("data", env.Data).Msg("system event")
	case "banned":
		log.Error().RawJSON("data", env.Data).Msg("bot was banned")
	case "error":
		log.Error().RawJSON("data", env.Data).Msg("server error")
	default:
		log.Debug().Str("event", env.Event).Msg("ignoring unknown event")
	}
}

func (c *Client) handleMessage(ctx context.Context, wm wireMessage) {
	user := domain.User{
		Username:    wm.User.Username,
		DisplayName: wm.User.DisplayName,
		Provider:    wm.User.Provider,
		Avatar:      wm.User.Avatar,
		IsBot:       wm.User.IsBot,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}

	// Skip our own messages and other bots.
	if user.IsBot || strings.EqualFold(user.Username, c.identity.Username) {
		return
	}

	c.messages.Add(1)

	msg := domain.Message{
		ID:        wm.ID,
		User:      user,
		Content:   wm.Content,
		Timestamp: wm.Timestamp,
		Room:      wm.Room,
	}

	if c.handler != nil && c.handler(ctx, msg) {
		c.commands.Add(1)
	}
}

// Send sends text to a room, truncating anything over the configured maximum
// message length.
func (c *Client) Send(ctx context.Context, room, text string) error {
	text = truncate(text, c.maxLen)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		log.Warn().Msg("cannot send message: not connected")
		return domain.ErrNotConnected
	}

	id, _ := uuid.NewV4()

	msg, err := json.Marshal(outboundMessage{ID: id.String(), Room: room, Content: text})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	if err := wsjson.Write(ctx, conn, envelope{Event: "message", Data: msg}); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrSendingReplyFailed, err)
	}

	return nil
}

// truncate shortens text to at most max bytes, cutting on a rune boundary
// and marking the cut with "..." when there is room for it. max <= 0 means
// unlimited.
func truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	suffix := "..."
	if max <= len(suffix) {
		suffix = ""
	}

	cut := max - len(suffix)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut] + suffix
}

func (c *Client) Stats() Stats {
	c.mu.Lock()
	connected := c.conn != nil
	c.mu.Unlock()

	c.onlineMu.RLock()
	online := len(c.online)
	c.onlineMu.RUnlock()

	return Stats{
		Uptime:     time.Since(c.start),
		Connected:  connected,
		Messages:   c.messages.Load(),
		Commands:   c.commands.Load(),
		Reconnects: c.reconnects.Load(),
		Online:     online,
	}
}

// OnlineUsers returns the usernames currently reported online by the server.
func (c *Client) OnlineUsers() []string {
	c.onlineMu.RLock()
	defer c.onlineMu.RUnlock()

	users := make([]string, 0, len(c.online))
	for u := range c.online {
		users = append(users, u)
	}
	return users
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setOnline(users []wireUser) {
	online := make(map[string]domain.User, len(users))
	for _, wu := range users {
		online[strings.ToLower(wu.Username)] = domain.User{
			Username:    wu.Username,
			DisplayName: wu.DisplayName,
			Provider:    wu.Provider,
			Avatar:      wu.Avatar,
			IsBot:       wu.IsBot,
		}
	}

	c.onlineMu.Lock()
	c.online = online
	c.onlineMu.Unlock()

	log.Debug().Int("count", len(online)).Msg("online users updated")
}
