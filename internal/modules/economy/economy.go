package economy

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Module provides the BongBux currency commands. Balances live in the
// balance store; every other module that pays out or charges goes through
// the same store.
type Module struct {
	balances port.BalanceStore
}

func Register(r *command.Registry, balances port.BalanceStore) {
	m := &Module{balances: balances}

	r.Register(command.Spec{
		Name:        "bongbux",
		Aliases:     []string{"balance", "bal", "bb"},
		Description: "Check your BongBux balance (creates account if needed)",
		Usage:       "!bongbux",
		Module:      "economy",
		Handler:     m.balance,
	})
	r.Register(command.Spec{
		Name:        "give",
		Aliases:     []string{"transfer", "pay"},
		Description: "Give BongBux to another user",
		Usage:       "!give <username> <amount>",
		Module:      "economy",
		Handler:     m.give,
	})
	r.Register(command.Spec{
		Name:        "checkbux",
		Aliases:     []string{"checkbal", "cb"},
		Description: "Check another user's balance",
		Usage:       "!checkbux <username>",
		Module:      "economy",
		Handler:     m.check,
	})
	r.Register(command.Spec{
		Name:        "leaderboard",
		Aliases:     []string{"lb", "top", "rich"},
		Description: "Show the top 5 richest users",
		Usage:       "!leaderboard",
		Module:      "economy",
		Handler:     m.leaderboard,
	})
	r.Register(command.Spec{
		Name:        "setbux",
		Description: "Set a user's balance",
		Usage:       "!setbux <username> <amount>",
		Permission:  domain.Admin,
		Module:      "economy",
		Hidden:      true,
		Handler:     m.set,
	})
}

func (m *Module) balance(ctx context.Context, inv *command.Invocation, _ string) error {
	balance, ok := m.balances.Get(inv.User.Username)
	if !ok {
		balance, err := m.balances.Ensure(inv.User.Username)
		if err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
		return inv.Reply(ctx, fmt.Sprintf("Welcome! You've been given %d BongBux to start!", balance))
	}

	return inv.Reply(ctx, fmt.Sprintf("%s has %d BongBux", inv.User.DisplayName, balance))
}

func (m *Module) give(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 2 {
		return inv.Reply(ctx, "Usage: !give <username> <amount>")
	}

	target := cleanTarget(inv.ArgsList[0])

	amount, err := strconv.Atoi(inv.ArgsList[1])
	if err != nil {
		return inv.Reply(ctx, "Amount must be a number!")
	}
	if amount <= 0 {
		return inv.Reply(ctx, "Amount must be positive!")
	}

	senderBalance, ok := m.balances.Get(inv.User.Username)
	if !ok {
		return inv.Reply(ctx, "You don't have an account! Use !bongbux first.")
	}
	if amount > senderBalance {
		return inv.Reply(ctx, fmt.Sprintf("You only have %d BongBux!", senderBalance))
	}

	targetBalance, ok := m.balances.Get(target)
	if !ok {
		return inv.Reply(ctx, fmt.Sprintf("%s doesn't have an account yet!", target))
	}

	if target == strings.ToLower(inv.User.Username) {
		return inv.Reply(ctx, "You can't give BongBux to yourself!")
	}

	if err := m.balances.Set(inv.User.Username, senderBalance-amount); err != nil {
		return fmt.Errorf("debiting sender: %w", err)
	}
	if err := m.balances.Set(target, targetBalance+amount); err != nil {
		return fmt.Errorf("crediting target: %w", err)
	}

	log.Info().Str("from", inv.User.Username).Str("to", target).Int("amount", amount).Msg("transfer")

	return inv.Reply(ctx, fmt.Sprintf("%s gave %d BongBux to %s", inv.User.DisplayName, amount, target))
}

func (m *Module) check(ctx context.Context, inv *command.Invocation, args string) error {
	if strings.TrimSpace(args) == "" {
		return inv.Reply(ctx, "Usage: !checkbux <username>")
	}

	target := cleanTarget(inv.ArgsList[0])

	balance, ok := m.balances.Get(target)
	if !ok {
		return inv.Reply(ctx, fmt.Sprintf("%s doesn't have an account yet!", target))
	}

	return inv.Reply(ctx, fmt.Sprintf("%s has %d BongBux", target, balance))
}

func (m *Module) leaderboard(ctx context.Context, inv *command.Invocation, _ string) error {
	balances, err := m.balances.All()
	if err != nil {
		return fmt.Errorf("reading balances: %w", err)
	}
	if len(balances) == 0 {
		return inv.Reply(ctx, "No one has BongBux yet!")
	}

	type entry struct {
		user    string
		balance int
	}
	entries := make([]entry, 0, len(balances))
	for u, b := range balances {
		entries = append(entries, entry{u, b})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].balance != entries[j].balance {
			return entries[i].balance > entries[j].balance
		}
		return entries[i].user < entries[j].user
	})

	if len(entries) > 5 {
		entries = entries[:5]
	}

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%d. %s: %d", i+1, e.user, e.balance)
	}

	return inv.Reply(ctx, "Richest: "+strings.Join(parts, " | "))
}

func (m *Module) set(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 2 {
		return inv.Reply(ctx, "Usage: !setbux <username> <amount>")
	}

	target := cleanTarget(inv.ArgsList[0])

	amount, err := strconv.Atoi(inv.ArgsList[1])
	if err != nil {
		return inv.Reply(ctx, "Amount must be a number!")
	}

	if err := m.balances.Set(target, amount); err != nil {
		return fmt.Errorf("setting balance: %w", err)
	}

	return inv.Reply(ctx, fmt.Sprintf("Set %s's balance to %d BongBux", target, amount))
}

// cleanTarget normalizes a username argument, dropping a leading @ mention
// marker.
func cleanTarget(arg string) string {
	return strings.ToLower(strings.TrimPrefix(arg, "@"))
}
