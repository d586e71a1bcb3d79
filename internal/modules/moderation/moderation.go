package moderation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"

	"github.com/rs/zerolog/log"
)

const defaultMuteDuration = 10 * time.Minute

// BanAPI is the slice of the chat server's admin API the moderation
// commands need.
type BanAPI interface {
	Ban(ctx context.Context, identifier, ip string) error
	Unban(ctx context.Context, identifier, ip string) error
}

// Module holds the moderation commands. Bans go through the chat server's
// admin API; mutes are purely bot-side and gate command dispatch.
type Module struct {
	store *Store
	api   BanAPI
}

func Register(r *command.Registry, store *Store, api BanAPI) *Module {
	m := &Module{store: store, api: api}

	r.Register(command.Spec{
		Name:        "ban",
		Description: "Ban a user from the chat server",
		Usage:       "!ban <username> [ip]",
		Permission:  domain.Admin,
		Module:      "moderation",
		Handler:     m.ban,
	})
	r.Register(command.Spec{
		Name:        "unban",
		Description: "Lift a ban",
		Usage:       "!unban <username> [ip]",
		Permission:  domain.Admin,
		Module:      "moderation",
		Handler:     m.unban,
	})
	r.Register(command.Spec{
		Name:        "banlist",
		Description: "List users banned by the bot",
		Usage:       "!banlist",
		Permission:  domain.Admin,
		Module:      "moderation",
		Hidden:      true,
		Handler:     m.banlist,
	})
	r.Register(command.Spec{
		Name:        "mute",
		Description: "Stop responding to a user's commands",
		Usage:       "!mute <username> [minutes]",
		Permission:  domain.Admin,
		Module:      "moderation",
		Handler:     m.mute,
	})
	r.Register(command.Spec{
		Name:        "unmute",
		Description: "Resume responding to a user's commands",
		Usage:       "!unmute <username>",
		Permission:  domain.Admin,
		Module:      "moderation",
		Handler:     m.unmute,
	})

	return m
}

// MuteGate is a pre-dispatch hook that silently drops commands from muted
// users.
func (m *Module) MuteGate(inv *command.Invocation, _ *command.Spec) error {
	if m.store.IsMuted(inv.User.Username) {
		log.Debug().Str("user", inv.User.Username).Str("command", inv.Command).Msg("dropping command from muted user")
		return command.ErrCancelled
	}
	return nil
}

// MuteListener drops every message from a muted user before any processing,
// so fallback interpreters and passive triggers stay silent too. It must be
// registered ahead of any replying listener.
func (m *Module) MuteListener(_ context.Context, msg domain.Message) bool {
	if !m.store.IsMuted(msg.User.Username) {
		return false
	}

	log.Debug().Str("user", msg.User.Username).Msg("dropping message from muted user")
	return true
}

// gibberishName matches the throwaway usernames spam accounts register
// with: six lowercase letters followed by a numeric suffix.
var gibberishName = regexp.MustCompile(`^[a-z]{6}\d{4,5}$`)

// SpamListener autobans accounts whose username matches the spam pattern.
// It runs on every inbound message, before command parsing.
func (m *Module) SpamListener(ctx context.Context, msg domain.Message) bool {
	if !gibberishName.MatchString(strings.ToLower(msg.User.Username)) {
		return false
	}

	log.Warn().Str("user", msg.User.Username).Msg("autobanning gibberish username")

	if err := m.api.Ban(ctx, msg.User.Username, ""); err != nil {
		log.Error().Err(err).Str("user", msg.User.Username).Msg("autoban failed")
		return true
	}

	if err := m.store.RecordBan(msg.User.Username); err != nil {
		log.Error().Err(err).Msg("failed to record autoban")
	}

	return true
}

func (m *Module) ban(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 1 {
		return inv.Reply(ctx, "Usage: !ban <username> [ip]")
	}

	target := strings.ToLower(strings.TrimPrefix(inv.ArgsList[0], "@"))
	var ip string
	if len(inv.ArgsList) > 1 {
		ip = inv.ArgsList[1]
	}

	if err := m.api.Ban(ctx, target, ip); err != nil {
		return inv.Reply(ctx, fmt.Sprintf("Failed to ban %s: server error", target))
	}

	if err := m.store.RecordBan(target); err != nil {
		log.Error().Err(err).Msg("failed to record ban")
	}

	log.Info().Str("target", target).Str("by", inv.User.Username).Msg("banned")

	return inv.Reply(ctx, fmt.Sprintf("Banned %s", target))
}

func (m *Module) unban(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 1 {
		return inv.Reply(ctx, "Usage: !unban <username> [ip]")
	}

	target := strings.ToLower(strings.TrimPrefix(inv.ArgsList[0], "@"))
	var ip string
	if len(inv.ArgsList) > 1 {
		ip = inv.ArgsList[1]
	}

	if err := m.api.Unban(ctx, target, ip); err != nil {
		return inv.Reply(ctx, fmt.Sprintf("Failed to unban %s: server error", target))
	}

	if _, err := m.store.RemoveBan(target); err != nil {
		log.Error().Err(err).Msg("failed to update ban list")
	}

	log.Info().Str("target", target).Str("by", inv.User.Username).Msg("unbanned")

	return inv.Reply(ctx, fmt.Sprintf("Unbanned %s", target))
}

func (m *Module) banlist(ctx context.Context, inv *command.Invocation, _ string) error {
	bans := m.store.Bans()
	if len(bans) == 0 {
		return inv.Reply(ctx, "No bans on record.")
	}

	return inv.Reply(ctx, fmt.Sprintf("Banned (%d): %s", len(bans), strings.Join(bans, ", ")))
}

func (m *Module) mute(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 1 {
		return inv.Reply(ctx, "Usage: !mute <username> [minutes]")
	}

	target := strings.ToLower(strings.TrimPrefix(inv.ArgsList[0], "@"))

	duration := defaultMuteDuration
	if len(inv.ArgsList) > 1 {
		minutes, err := strconv.Atoi(inv.ArgsList[1])
		if err != nil || minutes <= 0 {
			return inv.Reply(ctx, "Minutes must be a positive number!")
		}
		duration = time.Duration(minutes) * time.Minute
	}

	if err := m.store.Mute(target, time.Now().Add(duration)); err != nil {
		return fmt.Errorf("saving mute: %w", err)
	}

	log.Info().Str("target", target).Dur("duration", duration).Str("by", inv.User.Username).Msg("muted")

	return inv.Reply(ctx, fmt.Sprintf("Muted %s for %d minutes", target, int(duration.Minutes())))
}

func (m *Module) unmute(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 1 {
		return inv.Reply(ctx, "Usage: !unmute <username>")
	}

	target := strings.ToLower(strings.TrimPrefix(inv.ArgsList[0], "@"))

	muted, err := m.store.Unmute(target)
	if err != nil {
		return fmt.Errorf("removing mute: %w", err)
	}
	if !muted {
		return inv.Reply(ctx, fmt.Sprintf("%s isn't muted", target))
	}

	return inv.Reply(ctx, fmt.Sprintf("Unmuted %s", target))
}
