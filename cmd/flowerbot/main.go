package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"flowerbot/bot"
	"flowerbot/catalog"
	"flowerbot/core/database"
	"flowerbot/core/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "flowerbot:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := bot.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(&cfg.Config); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Shutdown() }()

	if err := database.RunMigrations(cfg.Database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	app, err := bot.New(cfg, catalog.NewPostgresStore(db))
	if err != nil {
		return fmt.Errorf("assemble bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.L.Info("starting",
		slog.String("event", "startup"),
		slog.Int64("operator_id", cfg.Telegram.AdminID),
	)

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	logger.L.Info("stopped", slog.String("event", "shutdown"))
	return nil
}
