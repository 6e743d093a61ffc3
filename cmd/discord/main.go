// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lonely/internal/commands/core"
	"lonely/internal/commands/music"
	"lonely/internal/commands/profile"
	"lonely/internal/config"
	"lonely/internal/discord"
	"lonely/internal/logging"
	"lonely/internal/music/player"
	"lonely/internal/music/queue"
	"lonely/internal/music/source_resolver"
	"lonely/internal/storage"
	"lonely/pkg/cmd"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		// run has already synced and closed the configured logger.
		logger, lerr := zap.NewProduction()
		if lerr != nil {
			logger = zap.L()
		}
		logger.Sugar().Fatalw("lonely exited", "error", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if _, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   true,
	}); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logging.Sync()
	log := logging.Named("main")
	log.Infow("starting lonely", "storage", cfg.StorageDriver, "prefix", cfg.CommandPrefix)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	bot, err := discord.New(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	resolver := source_resolver.New(cfg.SearchRate)
	manager := queue.NewManager(resolver, bot.Gateway(), player.New(resolver), bot.Notifier(), queue.Options{
		GracePeriod:          cfg.GracePeriod,
		ConnectTimeout:       cfg.ConnectTimeout,
		PlaybackStartTimeout: cfg.PlaybackStartTimeout,
	})

	registry := cmd.NewRegistry()
	middleware := []cmd.Middleware{cmd.Recover(log), cmd.Logging(logging.Named("command"))}
	all := append(music.Commands(manager),
		&profile.SteamIDCommand{Profiles: store},
		&core.HelpCommand{Commands: registry},
	)
	for _, c := range all {
		registry.MustRegister(cmd.Apply(c, middleware...))
	}

	if err := bot.Open(bot.NewDispatcher(cfg.CommandPrefix, registry), manager); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := manager.Shutdown(sctx); err != nil {
		log.Warnw("queue shutdown", "error", err)
	}
	if err := bot.Close(); err != nil {
		log.Warnw("close discord session", "error", err)
	}
	log.Info("discord bot exited cleanly")
	return nil
}
