package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/feedwatch/feedwatch/internal/config"
	"github.com/feedwatch/feedwatch/internal/monitor"
	"github.com/feedwatch/feedwatch/internal/notify"
	"github.com/feedwatch/feedwatch/internal/registry"
	"github.com/feedwatch/feedwatch/internal/remedy"
	"github.com/feedwatch/feedwatch/internal/source"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Local deployments keep the bot token and database password in a .env
	// file next to the binary; absence is fine.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	slog.Info("feedwatch starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"interval", cfg.Monitor.Interval,
		"staleness_threshold", cfg.Monitor.StalenessThreshold,
		"instruments", len(cfg.Monitor.Instruments),
		"backend", cfg.Monitor.Backend.Type,
	)

	reg, err := registry.New(cfg.Monitor.Instruments)
	if err != nil {
		slog.Error("failed to build instrument registry", "err", err)
		os.Exit(1)
	}

	src, err := source.New(cfg.Monitor.Backend)
	if err != nil {
		slog.Error("failed to build data source", "err", err)
		os.Exit(1)
	}

	var runner remedy.Runner = remedy.None{}
	if cfg.Monitor.Remediation.Command != "" {
		runner = remedy.NewCommand(
			cfg.Monitor.Remediation.Command,
			cfg.Monitor.Remediation.Args,
			cfg.Monitor.Remediation.Timeout,
		)
	}

	notifier := notify.New(cfg.Monitor.Telegram.Token(), cfg.Monitor.Telegram.ChatID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Watch the config file. The registry is immutable for the process
	// lifetime, so changes only log that a restart is needed.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config file changed — restart to apply",
				"instruments", len(updated.Monitor.Instruments))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	ev := monitor.NewEvaluator(reg, src, cfg.Monitor.StalenessThreshold, cfg.Monitor.QueryTimeout)
	mon := monitor.New(ev, notifier, runner, cfg.Monitor.Interval)

	if err := mon.Run(ctx); err != nil {
		slog.Error("monitor terminated", "err", err)
		os.Exit(1)
	}
	slog.Info("feedwatch shutting down")
}
