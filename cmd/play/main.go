// Package main plays Monster Slayer in the local terminal.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monsterslayer/internal/config"
	"github.com/cory-johannsen/monsterslayer/internal/frontend/handlers"
	"github.com/cory-johannsen/monsterslayer/internal/game/bestiary"
	"github.com/cory-johannsen/monsterslayer/internal/game/dice"
	"github.com/cory-johannsen/monsterslayer/internal/game/history"
	"github.com/cory-johannsen/monsterslayer/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and SLAYER_ environment only when empty)")
	monstersDir := flag.String("monsters", "", "monster YAML directory, overriding content.monsters_dir")
	seed := flag.Uint64("seed", 0, "seed for a reproducible battle (0 draws from crypto/rand)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *monstersDir != "" {
		cfg.Content.MonstersDir = *monstersDir
	}
	// Terminal play has no idle disconnect and keeps diagnostics off the game screen.
	cfg.Telnet.IdleTimeout = 0
	cfg.Logging.Format = "console"
	if cfg.Logging.Level == "debug" || cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}

	logger, err := observability.NewLogger(cfg.Logging, "play")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	roster := bestiary.Default()
	if cfg.Content.MonstersDir != "" {
		if roster, err = bestiary.LoadDirectory(cfg.Content.MonstersDir); err != nil {
			logger.Fatal("loading monsters", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.FloatSource(rand.New(rand.NewPCG(*seed, *seed)).Float64)
	}
	src = dice.NewLoggedSource(src, logger.Named("dice"))

	game := handlers.NewGameHandler(roster, src, history.NewMemoryArchive(), cfg.Combat, cfg.Telnet, logger)
	if err := game.Play(ctx, handlers.NewStreamConn(os.Stdin, os.Stdout)); err != nil && ctx.Err() == nil {
		logger.Error("session ended", zap.Error(err))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadDefaults()
	}
	return config.Load(path)
}
