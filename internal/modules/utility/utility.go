package utility

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fishbot/internal/adapters/chat"
	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/port"
)

// StatsSource exposes the chat client's counters.
type StatsSource interface {
	Stats() chat.Stats
}

// Module serves the meta commands: help, the command list, liveness checks
// and last-seen lookups.
type Module struct {
	registry *command.Registry
	perms    port.Permissions
	stats    StatsSource
	seen     *LastSeenStore
	start    time.Time
}

func Register(r *command.Registry, perms port.Permissions, stats StatsSource, seen *LastSeenStore) *Module {
	m := &Module{
		registry: r,
		perms:    perms,
		stats:    stats,
		seen:     seen,
		start:    time.Now(),
	}

	r.Register(command.Spec{
		Name:        "help",
		Aliases:     []string{"h"},
		Description: "Show usage for a command, or list all commands",
		Usage:       "!help [command]",
		Module:      "utility",
		Handler:     m.help,
	})
	r.Register(command.Spec{
		Name:        "commands",
		Aliases:     []string{"cmds"},
		Description: "List available commands",
		Usage:       "!commands [module]",
		Module:      "utility",
		Handler:     m.commands,
	})
	r.Register(command.Spec{
		Name:        "ping",
		Description: "Check the bot is alive",
		Usage:       "!ping",
		Module:      "utility",
		Handler:     m.ping,
	})
	r.Register(command.Spec{
		Name:        "uptime",
		Description: "How long the bot has been running",
		Usage:       "!uptime",
		Module:      "utility",
		Handler:     m.uptime,
	})
	r.Register(command.Spec{
		Name:        "stats",
		Description: "Bot message and connection stats",
		Usage:       "!stats",
		Module:      "utility",
		Handler:     m.botStats,
	})
	r.Register(command.Spec{
		Name:        "last",
		Aliases:     []string{"lastseen", "seen"},
		Description: "When a user last spoke",
		Usage:       "!last <username>",
		Module:      "utility",
		Handler:     m.last,
	})

	return m
}

// Listener records message activity for !last. It never consumes the
// message.
func (m *Module) Listener(_ context.Context, msg domain.Message) bool {
	m.seen.Touch(msg.User.Username)
	return false
}

func (m *Module) help(ctx context.Context, inv *command.Invocation, args string) error {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(args), "!"))
	if name == "" {
		return m.commands(ctx, inv, "")
	}

	spec, ok := m.registry.Resolve(name)
	if !ok {
		return inv.Reply(ctx, fmt.Sprintf("No command !%s", name))
	}

	reply := fmt.Sprintf("%s - %s", spec.Usage, spec.Description)
	if len(spec.Aliases) > 0 {
		reply += " (aliases: " + strings.Join(spec.Aliases, ", ") + ")"
	}

	return inv.Reply(ctx, reply)
}

func (m *Module) commands(ctx context.Context, inv *command.Invocation, args string) error {
	module := strings.ToLower(strings.TrimSpace(args))
	level := m.perms.LevelOf(inv.User.Username)

	specs := m.registry.ListCommands(module, false, level)
	if len(specs) == 0 {
		if module != "" {
			return inv.Reply(ctx, fmt.Sprintf("No commands in module '%s'", module))
		}
		return inv.Reply(ctx, "No commands available.")
	}

	if module != "" {
		names := make([]string, len(specs))
		for i, s := range specs {
			names[i] = "!" + s.Name
		}
		return inv.Reply(ctx, fmt.Sprintf("%s: %s", module, strings.Join(names, " ")))
	}

	// Group by module for the full listing.
	byModule := make(map[string][]string)
	for _, s := range specs {
		byModule[s.Module] = append(byModule[s.Module], "!"+s.Name)
	}

	modules := make([]string, 0, len(byModule))
	for mod := range byModule {
		modules = append(modules, mod)
	}
	sort.Strings(modules)

	parts := make([]string, len(modules))
	for i, mod := range modules {
		parts[i] = fmt.Sprintf("%s: %s", mod, strings.Join(byModule[mod], " "))
	}

	return inv.Reply(ctx, strings.Join(parts, " | "))
}

func (m *Module) ping(ctx context.Context, inv *command.Invocation, _ string) error {
	return inv.Reply(ctx, "Pong!")
}

func (m *Module) uptime(ctx context.Context, inv *command.Invocation, _ string) error {
	return inv.Reply(ctx, "Up for "+formatUptime(time.Since(m.start)))
}

func (m *Module) botStats(ctx context.Context, inv *command.Invocation, _ string) error {
	s := m.stats.Stats()

	status := "disconnected"
	if s.Connected {
		status = "connected"
	}

	return inv.Reply(ctx, fmt.Sprintf(
		"Up %s (%s) | %d messages seen, %d commands handled, %d reconnects | %d online",
		formatUptime(s.Uptime), status, s.Messages, s.Commands, s.Reconnects, s.Online))
}

func (m *Module) last(ctx context.Context, inv *command.Invocation, args string) error {
	target := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(args), "@"))
	if target == "" {
		return inv.Reply(ctx, "Usage: !last <username>")
	}

	t, ok := m.seen.Seen(target)
	if !ok {
		return inv.Reply(ctx, fmt.Sprintf("I've never seen %s speak", target))
	}

	return inv.Reply(ctx, fmt.Sprintf("%s last spoke %s", target, formatAgo(time.Since(t))))
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}
