package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fishbot/internal/adapters/chat"
	"fishbot/internal/adapters/handler"
	"fishbot/internal/adapters/store"
	"fishbot/internal/core/domain"
	"fishbot/internal/core/domain/command"
	"fishbot/internal/core/service"
	"fishbot/internal/modules/api"
	"fishbot/internal/modules/custom"
	"fishbot/internal/modules/economy"
	"fishbot/internal/modules/fishing"
	"fishbot/internal/modules/fun"
	"fishbot/internal/modules/gambling"
	"fishbot/internal/modules/moderation"
	"fishbot/internal/modules/utility"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting fishbot...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")
	viper.SetConfigName("config")
	viper.AutomaticEnv()

	log.Info().Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dataDir := viper.GetString("bot.data_dir")
	if dataDir == "" {
		dataDir = "data"
	}

	balances, err := store.NewFileBalanceStore(
		filepath.Join(dataDir, "balances"), viper.GetInt("economy.starting_balance"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing balance store")
	}

	fishStats, err := fishing.NewStatsStore(filepath.Join(dataDir, "fishing.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed loading fishing stats")
	}

	customTable, err := custom.NewTable(filepath.Join(dataDir, "commands.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed loading custom commands")
	}

	modStore, err := moderation.NewStore(filepath.Join(dataDir, "moderation.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed loading moderation state")
	}

	lastSeen, err := utility.NewLastSeenStore(filepath.Join(dataDir, "lastseen.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed loading last-seen data")
	}

	perms := service.NewPermissionEvaluator()
	cooldowns := service.NewCooldownTracker()
	registry := command.NewRegistry(perms, cooldowns)

	// The client and the intake reference each other; the client calls the
	// intake for every inbound message, the intake replies through the
	// client.
	var intake *handler.Intake
	client := chat.NewClient(func(ctx context.Context, msg domain.Message) bool {
		return intake.HandleMessage(ctx, msg)
	})
	intake = handler.NewIntake(registry, client)

	adminAPI := chat.NewAdminAPI()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	economy.Register(registry, balances)
	fishing.Register(registry, balances, fishStats)
	gambling.Register(registry, balances)
	customMod := custom.Register(registry, customTable)
	modMod := moderation.Register(registry, modStore, adminAPI)
	api.Register(registry)
	utilMod := utility.Register(registry, perms, client, lastSeen)
	funMod := fun.Register(registry, rng)

	registry.AddPreHook(modMod.MuteGate)
	registry.AddPreHook(commandLogger)

	// The mute listener runs first so muted users get nothing at all, not
	// even fallback or trigger replies.
	intake.AddListener(modMod.MuteListener)
	intake.AddListener(modMod.SpamListener)
	intake.AddListener(utilMod.Listener)
	intake.AddListener(funMod.Listener(client))
	intake.AddFallback(customMod.Fallback)

	log.Info().Msg("bot listening")
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("chat client stopped")
	}

	log.Info().Msg("shutting down")
}

// commandLogger records every dispatched command before its handler runs.
func commandLogger(inv *command.Invocation, spec *command.Spec) error {
	log.Info().Str("command", spec.Name).Str("user", inv.User.Username).
		Str("args", inv.Args).Msg("dispatching command")
	return nil
}
