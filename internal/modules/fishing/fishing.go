package fishing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/port"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const castCost = 5

// Fish is one entry in the catch table. Probability is the weight used for
// selection; weights across the table plus the nothing weight sum to 1.
type Fish struct {
	Name        string
	Description string
	Prize       int
	Probability float64
}

// nothingProbability is the chance a cast catches nothing at all.
const nothingProbability = 0.60

var catchTable = []Fish{
	{Name: "Old Boot", Description: "Someone's lost sole.", Prize: 1, Probability: 0.10},
	{Name: "Minnow", Description: "Barely worth the bait.", Prize: 5, Probability: 0.09},
	{Name: "Carp", Description: "A solid, dependable carp.", Prize: 15, Probability: 0.08},
	{Name: "Bass", Description: "Respectable catch.", Prize: 30, Probability: 0.06},
	{Name: "Catfish", Description: "Whiskers and all.", Prize: 50, Probability: 0.04},
	{Name: "Salmon", Description: "Swimming upstream no more.", Prize: 100, Probability: 0.015},
	{Name: "Golden Koi", Description: "It shimmers in the light.", Prize: 250, Probability: 0.008},
	{Name: "Ancient Sturgeon", Description: "Older than the chat itself.", Prize: 500, Probability: 0.005},
	{Name: "The Kraken", Description: "You caught... THE KRAKEN?!", Prize: 2000, Probability: 0.002},
}

// Module implements fishing. Casting costs BongBux up front, pays out on a
// weighted roll, and is throttled per user so nobody can script their way
// to the Kraken.
type Module struct {
	balances port.BalanceStore
	stats    *StatsStore
	roll     func() float64

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func Register(r *command.Registry, balances port.BalanceStore, stats *StatsStore) *Module {
	m := &Module{
		balances: balances,
		stats:    stats,
		roll:     rand.Float64,
		limiters: make(map[string]*rate.Limiter),
		// 5 casts per 5 minutes per user.
		limit: rate.Every(time.Minute),
		burst: 5,
	}

	r.Register(command.Spec{
		Name:        "fish",
		Aliases:     []string{"cast"},
		Description: fmt.Sprintf("Cast your line for %d BongBux", castCost),
		Usage:       "!fish",
		Module:      "fishing",
		Handler:     m.fish,
	})
	r.Register(command.Spec{
		Name:        "fishstats",
		Aliases:     []string{"fs", "fstats"},
		Description: "Show your fishing stats, or global stats",
		Usage:       "!fishstats [global]",
		Module:      "fishing",
		Handler:     m.fishstats,
	})

	return m
}

func (m *Module) limiterFor(username string) *rate.Limiter {
	m.limitMu.Lock()
	defer m.limitMu.Unlock()

	username = strings.ToLower(username)
	l, ok := m.limiters[username]
	if !ok {
		l = rate.NewLimiter(m.limit, m.burst)
		m.limiters[username] = l
	}
	return l
}

func (m *Module) fish(ctx context.Context, inv *command.Invocation, _ string) error {
	balance, ok := m.balances.Get(inv.User.Username)
	if !ok {
		return inv.Reply(ctx, "You don't have an account! Use !bongbux first.")
	}
	if balance < castCost {
		return inv.Reply(ctx, fmt.Sprintf("You need %d BongBux to cast! You have %d.", castCost, balance))
	}

	limiter := m.limiterFor(inv.User.Username)
	res := limiter.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		wait := int(math.Ceil(delay.Seconds()))
		return inv.ReplyMention(ctx, fmt.Sprintf("You're casting too fast! Wait %ds.", wait))
	}

	if err := m.balances.Set(inv.User.Username, balance-castCost); err != nil {
		res.Cancel()
		return fmt.Errorf("charging cast cost: %w", err)
	}

	caught, fish := m.catch()

	if !caught {
		m.stats.RecordCast(inv.User.Username, "", 0)
		return inv.ReplyMention(ctx, fmt.Sprintf("Not even a nibble! [-%d BongBux]", castCost))
	}

	balance, _ = m.balances.Get(inv.User.Username)
	if err := m.balances.Set(inv.User.Username, balance+fish.Prize); err != nil {
		return fmt.Errorf("paying out catch: %w", err)
	}

	m.stats.RecordCast(inv.User.Username, fish.Name, fish.Prize)

	log.Info().Str("user", inv.User.Username).Str("fish", fish.Name).Int("prize", fish.Prize).Msg("catch")

	return inv.ReplyMention(ctx, formatCatch(fish))
}

// catch rolls the weighted table. Returns false when nothing bites.
func (m *Module) catch() (bool, Fish) {
	r := m.roll()
	if r < nothingProbability {
		return false, Fish{}
	}

	r -= nothingProbability
	for _, f := range catchTable {
		if r < f.Probability {
			return true, f
		}
		r -= f.Probability
	}

	// Weights don't quite sum to 1; leftover rolls land on the cheapest fish.
	return true, catchTable[0]
}

// formatCatch renders a caught fish, emphasized by prize tier.
func formatCatch(f Fish) string {
	line := fmt.Sprintf("You caught a %s! %s [+%d BongBux]", f.Name, f.Description, f.Prize)
	switch {
	case f.Prize >= 500:
		return "*** " + line + " ***"
	case f.Prize >= 200:
		return "** " + line + " **"
	default:
		return line
	}
}

func (m *Module) fishstats(ctx context.Context, inv *command.Invocation, args string) error {
	if strings.EqualFold(strings.TrimSpace(args), "global") {
		g := m.stats.Global()
		if g.Casts == 0 {
			return inv.Reply(ctx, "Nobody has gone fishing yet!")
		}
		return inv.Reply(ctx, fmt.Sprintf(
			"Global fishing: %d casts, %d catches, %d BongBux won. Best catch: %s",
			g.Casts, g.Catches, g.Earned, orNone(g.BestFish)))
	}

	s, ok := m.stats.User(inv.User.Username)
	if !ok {
		return inv.Reply(ctx, "You haven't gone fishing yet! Try !fish")
	}

	return inv.Reply(ctx, fmt.Sprintf(
		"%s's fishing: %d casts, %d catches, %d BongBux won. Best catch: %s",
		inv.User.DisplayName, s.Casts, s.Catches, s.Earned, orNone(s.BestFish)))
}

func orNone(fish string) string {
	if fish == "" {
		return "none"
	}
	return fish
}
