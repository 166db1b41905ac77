package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	pkg "github.com/openballot/openballot/pkg/internal"
	"github.com/openballot/openballot/pkg/internal/bus"
	"github.com/openballot/openballot/pkg/internal/cache"
	"github.com/openballot/openballot/pkg/internal/database"
	"github.com/openballot/openballot/pkg/internal/http"
	"github.com/openballot/openballot/pkg/internal/http/api"
	"github.com/openballot/openballot/pkg/internal/security"
	"github.com/openballot/openballot/pkg/internal/services"
	"github.com/openballot/openballot/pkg/internal/store"

	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString("  ___                   _           _ _       _\n / _ \\ _ __   ___ _ __ | |__   __ _| | | ___ | |_\n| | | | '_ \\ / _ \\ '_ \\| '_ \\ / _` | | |/ _ \\| __|\n| |_| | |_) |  __/ | | | |_) | (_| | | | (_) | |_\n \\___/| .__/ \\___|_| |_|_.__/ \\__,_|_|_|\\___/ \\__|\n      |_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Openballot"), pkg.AppVersion)
	fmt.Printf("The shareable poll service\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Prepare the in-process cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Wire services
	pollStore := store.NewPollStore(database.C)
	voteStore := store.NewVoteStore(database.C)
	userStore := store.NewUserStore(database.C)

	sharedCache := marshaler.New(gocache.New[any](cache.S))

	hub := bus.NewHub()
	gateway := security.NewGateway(
		viper.GetString("security.jwt_secret"),
		time.Duration(viper.GetInt("security.token_valid_hours"))*time.Hour,
	)

	deps := api.Deps{
		Registry: services.NewPollRegistry(pollStore, voteStore, sharedCache),
		Ledger:   services.NewVoteLedger(pollStore, voteStore, hub),
		Accounts: services.NewUserAccountService(userStore),
		Gateway:  gateway,
		Hub:      hub,
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.Start()

	// Server
	go http.NewServer(deps).Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
