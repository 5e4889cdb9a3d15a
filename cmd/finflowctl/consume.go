package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"finflow/internal/app"
	"finflow/pkg/config"
	"finflow/pkg/logger"
	"finflow/pkg/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConsumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Run the projection consumers until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsume(cmd.Context())
		},
	}
}

func runConsume(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Events.Transport != app.TransportKafka {
		return fmt.Errorf("consume needs EVENTS_TRANSPORT=kafka, got %q", cfg.Events.Transport)
	}

	log, err := logger.New(cfg.Logger.Level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPool(ctx, &cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, log); err != nil {
		return err
	}

	bus, err := app.NewBus(cfg, log)
	if err != nil {
		return err
	}
	defer bus.Close()

	closeProjections, err := app.RegisterProjections(ctx, bus.Subscriber, db, cfg, log)
	if err != nil {
		return err
	}
	defer closeProjections()

	if err := bus.Subscriber.Start(ctx); err != nil {
		return err
	}
	log.Info("Consumers running")

	<-ctx.Done()
	log.Info("Stopping consumers")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bus.Subscriber.Stop(stopCtx); err != nil {
		log.Error("Consumers did not stop cleanly", zap.Error(err))
		return err
	}
	return nil
}
