package main

import (
	"context"
	"fmt"
	"time"

	"finflow/internal/app"
	"finflow/internal/repository"
	"finflow/internal/service"
	"finflow/pkg/config"
	"finflow/pkg/logger"
	"finflow/pkg/postgres"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newResyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resync <userId>",
		Short: "Re-publish a user's transactions so projections reconcile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			return runResync(cmd.Context(), cmd, userID)
		},
	}
}

func runResync(ctx context.Context, cmd *cobra.Command, userID uuid.UUID) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Events.Transport != app.TransportKafka {
		return fmt.Errorf("resync from the CLI needs EVENTS_TRANSPORT=kafka; with the in-memory bus use POST /api/v1/transactions/resync")
	}

	log, err := logger.New(cfg.Logger.Level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	bus, err := app.NewBus(cfg, log)
	if err != nil {
		return err
	}
	defer bus.Close()

	txRepo := repository.NewTransactionRepository(db, log)
	svc := service.NewTransactionService(txRepo, service.NewDuplicateService(txRepo, log), bus.Publisher, log)

	n, err := svc.Resync(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %d events for user %s\n", n, userID)
	return nil
}
