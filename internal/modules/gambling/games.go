package gambling

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fishbot/internal/core/domain/command"

	"github.com/spf13/viper"
)

const slotsCost = 10

// slotSymbol is one reel symbol with its selection weight and the payout for
// lining up three of them.
type slotSymbol struct {
	name    string
	weight  int
	jackpot int
}

var slotSymbols = []slotSymbol{
	{"7", 1, 6969},
	{"Weed", 2, 420},
	{"Mane", 2, 500},
	{"Ramen", 3, 350},
	{"Cherry", 5, 100},
	{"Lemon", 6, 75},
	{"Orange", 6, 80},
	{"Grape", 6, 90},
}

func (m *Module) spinReel() slotSymbol {
	total := 0
	for _, s := range slotSymbols {
		total += s.weight
	}

	r := m.rng.Intn(total)
	for _, s := range slotSymbols {
		if r < s.weight {
			return s
		}
		r -= s.weight
	}
	return slotSymbols[len(slotSymbols)-1]
}

func (m *Module) slots(ctx context.Context, inv *command.Invocation, _ string) error {
	balance, ok, err := m.account(ctx, inv)
	if !ok {
		return err
	}
	if balance < slotsCost {
		return inv.Reply(ctx, fmt.Sprintf("You need %d BongBux to play slots!", slotsCost))
	}

	a, b, c := m.spinReel(), m.spinReel(), m.spinReel()
	display := fmt.Sprintf("[ %s | %s | %s ]", a.name, b.name, c.name)

	net := -slotsCost
	var outcome string
	switch {
	case a.name == b.name && b.name == c.name:
		net += a.jackpot
		outcome = fmt.Sprintf("JACKPOT! You win %d BongBux!", a.jackpot)
	case a.name == b.name || b.name == c.name || a.name == c.name:
		net += 15
		outcome = "Two of a kind! You win 15 BongBux!"
	case a.name == "Cherry" || b.name == "Cherry" || c.name == "Cherry":
		net += 5
		outcome = "A cherry! You win 5 BongBux!"
	default:
		outcome = fmt.Sprintf("No luck! [-%d BongBux]", slotsCost)
	}

	if err := m.settle(inv, "slots", balance, net); err != nil {
		return err
	}

	return inv.ReplyMention(ctx, display+" "+outcome)
}

// rollPrize maps a 6-digit roll to its payout. Special numbers beat the
// repeating-digit tiers.
func rollPrize(roll string) (int, string) {
	switch roll {
	case "696969":
		return 6969, "NICE"
	case "420420":
		return 4200, "Blaze it!"
	case "000000":
		return 10000, "ALL ZEROS!"
	}

	// Count trailing repeated digits.
	last := roll[len(roll)-1]
	repeat := 1
	for i := len(roll) - 2; i >= 0 && roll[i] == last; i-- {
		repeat++
	}

	switch repeat {
	case 2:
		return 25, "Dubs!"
	case 3:
		return 100, "Trips!"
	case 4:
		return 1000, "Quads!"
	case 5:
		return 10000, "Quints!"
	case 6:
		return 50000, "SEXTS!!!"
	}
	return 0, ""
}

func (m *Module) roll(ctx context.Context, inv *command.Invocation, _ string) error {
	balance, ok, err := m.account(ctx, inv)
	if !ok {
		return err
	}

	roll := fmt.Sprintf("%06d", m.rng.Intn(1000000))
	prize, label := rollPrize(roll)

	if prize == 0 {
		return inv.ReplyMention(ctx, fmt.Sprintf("rolled %s. Nothing!", roll))
	}

	if err := m.settle(inv, "roll", balance, prize); err != nil {
		return err
	}

	return inv.ReplyMention(ctx, fmt.Sprintf("rolled %s. %s You win %d BongBux!", roll, label, prize))
}

const d20Cost = 5

func (m *Module) d20(ctx context.Context, inv *command.Invocation, _ string) error {
	balance, ok, err := m.account(ctx, inv)
	if !ok {
		return err
	}
	if balance < d20Cost {
		return inv.Reply(ctx, fmt.Sprintf("You need %d BongBux to roll!", d20Cost))
	}

	roll := m.rng.Intn(20) + 1

	net := -d20Cost
	var outcome string
	switch {
	case roll == 20:
		net += 20 + d20Cost
		outcome = "NATURAL 20! You win 20 BongBux!"
	case roll == 1:
		net -= 10
		outcome = "Natural 1... critical failure, lose 10 extra BongBux!"
	case roll >= 15:
		net += 10 + d20Cost
		outcome = "Nice roll! You win 10 BongBux!"
	default:
		outcome = fmt.Sprintf("Nothing happens. [-%d BongBux]", d20Cost)
	}

	if err := m.settle(inv, "d20", balance, net); err != nil {
		return err
	}

	return inv.ReplyMention(ctx, fmt.Sprintf("rolled a %d. %s", roll, outcome))
}

func (m *Module) coinflip(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 2 {
		return inv.Reply(ctx, "Usage: !coinflip <heads|tails> <amount>")
	}

	call := strings.ToLower(inv.ArgsList[0])
	if call != "heads" && call != "tails" {
		return inv.Reply(ctx, "Call heads or tails!")
	}

	balance, ok, err := m.account(ctx, inv)
	if !ok {
		return err
	}

	amount, err := parseBetAmount(inv.ArgsList[1], balance)
	if err != nil {
		return inv.Reply(ctx, betReply(err))
	}
	if amount == 0 {
		return inv.Reply(ctx, "You have nothing to bet!")
	}

	result := "heads"
	if m.rng.Intn(2) == 1 {
		result = "tails"
	}

	net := -amount
	outcome := fmt.Sprintf("It's %s! You lose %d BongBux.", result, amount)
	if result == call {
		net = amount
		outcome = fmt.Sprintf("It's %s! You win %d BongBux!", result, amount)
	}

	if err := m.settle(inv, "coinflip", balance, net); err != nil {
		return err
	}

	return inv.ReplyMention(ctx, outcome)
}

// redNumbers is the set of red pockets on a European wheel.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true,
	27: true, 30: true, 32: true, 34: true, 36: true,
}

func (m *Module) roulette(ctx context.Context, inv *command.Invocation, args string) error {
	parts := strings.Fields(strings.ToLower(args))
	if len(parts) != 3 || parts[1] != "on" {
		return inv.Reply(ctx, "Usage: !roulette <amount> on <number|red|black|odd|even|low|high>")
	}

	balance, ok, err := m.account(ctx, inv)
	if !ok {
		return err
	}

	amount, err := parseBetAmount(parts[0], balance)
	if err != nil {
		return inv.Reply(ctx, betReply(err))
	}
	if amount == 0 {
		return inv.Reply(ctx, "You have nothing to bet!")
	}

	bet := parts[2]
	spin := m.rng.Intn(37)

	var won bool
	payout := 2
	switch bet {
	case "red":
		won = redNumbers[spin]
	case "black":
		won = spin != 0 && !redNumbers[spin]
	case "odd":
		won = spin%2 == 1
	case "even":
		won = spin != 0 && spin%2 == 0
	case "low":
		won = spin >= 1 && spin <= 18
	case "high":
		won = spin >= 19
	default:
		n, err := strconv.Atoi(bet)
		if err != nil || n < 0 || n > 36 {
			return inv.Reply(ctx, "Bet on a number 0-36, red, black, odd, even, low or high!")
		}
		won = spin == n
		payout = 35
	}

	color := "red"
	if spin == 0 {
		color = "green"
	} else if !redNumbers[spin] {
		color = "black"
	}

	net := -amount
	outcome := fmt.Sprintf("The ball lands on %d (%s). You lose %d BongBux.", spin, color, amount)
	if won {
		net = amount * (payout - 1)
		outcome = fmt.Sprintf("The ball lands on %d (%s). You win %d BongBux!", spin, color, net)
	}

	if err := m.settle(inv, "roulette", balance, net); err != nil {
		return err
	}

	return inv.ReplyMention(ctx, outcome)
}

func (m *Module) gamble(ctx context.Context, inv *command.Invocation, _ string) error {
	if len(inv.ArgsList) < 1 {
		return inv.Reply(ctx, "Usage: !gamble <amount>")
	}

	balance, ok, err := m.account(ctx, inv)
	if !ok {
		return err
	}

	amount, err := parseBetAmount(inv.ArgsList[0], balance)
	if err != nil {
		return inv.Reply(ctx, betReply(err))
	}
	if amount == 0 {
		return inv.Reply(ctx, "You have nothing to bet!")
	}

	winRate := viper.GetFloat64("gambling.win_rate")
	if winRate <= 0 || winRate >= 1 {
		winRate = 0.45
	}

	net := -amount
	outcome := fmt.Sprintf("You lose %d BongBux!", amount)
	if m.rng.Float64() < winRate {
		net = amount
		outcome = fmt.Sprintf("You win %d BongBux!", amount)
	}

	if err := m.settle(inv, "gamble", balance, net); err != nil {
		return err
	}

	return inv.ReplyMention(ctx, outcome)
}
