package gambling

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Module bundles the casino commands. All of them settle through the shared
// balance store and most carry a cooldown so losses arrive at a civilized
// pace.
type Module struct {
	balances port.BalanceStore
	rng      *rand.Rand
}

func Register(r *command.Registry, balances port.BalanceStore) {
	m := &Module{
		balances: balances,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	r.Register(command.Spec{
		Name:        "slots",
		Aliases:     []string{"slot"},
		Description: "Spin the slot machine (10 BongBux)",
		Usage:       "!slots",
		Module:      "gambling",
		Cooldown:    5 * time.Second,
		Handler:     m.slots,
	})
	r.Register(command.Spec{
		Name:        "roll",
		Aliases:     []string{"dice"},
		Description: "Roll a 6-digit number, win on repeating digits",
		Usage:       "!roll",
		Module:      "gambling",
		Cooldown:    10 * time.Second,
		Handler:     m.roll,
	})
	r.Register(command.Spec{
		Name:        "d20",
		Description: "Roll a d20 for 5 BongBux, win on high rolls",
		Usage:       "!d20",
		Module:      "gambling",
		Cooldown:    5 * time.Second,
		Handler:     m.d20,
	})
	r.Register(command.Spec{
		Name:        "coinflip",
		Aliases:     []string{"cf", "flip"},
		Description: "Flip a coin, double or nothing",
		Usage:       "!coinflip <heads|tails> <amount>",
		Module:      "gambling",
		Cooldown:    5 * time.Second,
		Handler:     m.coinflip,
	})
	r.Register(command.Spec{
		Name:        "roulette",
		Aliases:     []string{"rl"},
		Description: "Spin the roulette wheel",
		Usage:       "!roulette <amount> on <number|red|black|odd|even|low|high>",
		Module:      "gambling",
		Cooldown:    10 * time.Second,
		Handler:     m.roulette,
	})
	r.Register(command.Spec{
		Name:        "gamble",
		Aliases:     []string{"bet"},
		Description: "Simple gamble, win double or lose it all",
		Usage:       "!gamble <amount>",
		Module:      "gambling",
		Cooldown:    5 * time.Second,
		Handler:     m.gamble,
	})
}

// parseBetAmount resolves a bet argument against the user's balance. It
// accepts a positive integer or the keywords all, max, yolo and half.
func parseBetAmount(arg string, balance int) (int, error) {
	switch strings.ToLower(arg) {
	case "all", "max", "yolo":
		return balance, nil
	case "half":
		return balance / 2, nil
	}

	amount, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a valid amount", arg)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("bet must be positive")
	}
	if amount > balance {
		return 0, fmt.Errorf("you only have %d BongBux", balance)
	}

	return amount, nil
}

// betReply turns a parseBetAmount error into a chat-friendly message.
func betReply(err error) string {
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:] + "!"
}

// account fetches the user's balance, replying with a signup hint when the
// account does not exist. The bool reports whether play can proceed.
func (m *Module) account(ctx context.Context, inv *command.Invocation) (int, bool, error) {
	balance, ok := m.balances.Get(inv.User.Username)
	if !ok {
		return 0, false, inv.Reply(ctx, "You don't have an account! Use !bongbux first.")
	}
	return balance, true, nil
}

// settle applies a net win or loss and logs the outcome.
func (m *Module) settle(inv *command.Invocation, game string, balance, net int) error {
	newBalance := balance + net
	if newBalance < 0 {
		newBalance = 0
	}
	if err := m.balances.Set(inv.User.Username, newBalance); err != nil {
		return fmt.Errorf("settling %s: %w", game, err)
	}

	log.Info().Str("user", inv.User.Username).Str("game", game).Int("net", net).
		Int("balance", newBalance).Msg("gamble settled")

	return nil
}
