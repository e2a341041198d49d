// Package main runs the Monster Slayer Telnet server.
// It wires together configuration, the monster roster, the optional battle
// archive, and the Telnet acceptor.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/monsterslayer/internal/config"
	"github.com/cory-johannsen/monsterslayer/internal/frontend/handlers"
	"github.com/cory-johannsen/monsterslayer/internal/frontend/telnet"
	"github.com/cory-johannsen/monsterslayer/internal/game/bestiary"
	"github.com/cory-johannsen/monsterslayer/internal/game/dice"
	"github.com/cory-johannsen/monsterslayer/internal/game/history"
	"github.com/cory-johannsen/monsterslayer/internal/observability"
	"github.com/cory-johannsen/monsterslayer/internal/server"
	"github.com/cory-johannsen/monsterslayer/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "gameserver")
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
	logger.Info("bestiary loaded", zap.Int("monsters", roster.Len()))

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	var archive history.Archive = history.NewMemoryArchive()
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		archive = postgres.NewBattleRepository(pool.DB())

		healthDone := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-healthDone:
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() {
				close(healthDone)
				pool.Close()
			},
		})
	}

	src := dice.NewLoggedSource(dice.NewCryptoSource(), logger.Named("dice"))
	game := handlers.NewGameHandler(roster, src, archive, cfg.Combat, cfg.Telnet, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, game, logger)

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("archive_persistent", cfg.Database.Enabled),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
