package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"finflow/internal/models"
	"finflow/internal/service"
	"finflow/pkg/config"
	"finflow/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newParseCommand() *cobra.Command {
	var password string
	var useClassifier bool

	cmd := &cobra.Command{
		Use:   "parse <statement.pdf>",
		Short: "Extract, parse and categorize a statement without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.OutOrStdout(), args[0], password, useClassifier)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password for protected PDFs")
	cmd.Flags().BoolVar(&useClassifier, "classifier", false, "refine low-confidence categories with the configured classifier")

	return cmd
}

func runParse(ctx context.Context, out io.Writer, path, password string, useClassifier bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Logger.Level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := service.NewPDFExtractor(log).ExtractText(ctx, data, password)
	if err != nil {
		return err
	}

	var classifier service.Classifier = service.DisabledClassifier{}
	if useClassifier {
		c, closeClassifier, err := service.NewClassifier(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeClassifier()
		classifier = c
	}

	categorizer := service.NewCategorizationService(
		service.DefaultCategoryRules(),
		classifier,
		cfg.Ingestion.ClassifierConcurrency,
		cfg.Ingestion.ClassifierTimeout,
		log,
	)

	txs := service.ParseStatementText(text)
	log.Debug("Parsed statement", zap.Int("lines", len(txs)))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDIRECTION\tAMOUNT\tCATEGORY\tCONFIDENCE\tDESCRIPTION")
	for _, tx := range txs {
		date := tx.Date
		result := categorizer.Categorize(ctx, tx.Description, tx.Amount, &date)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date.Format("2006-01-02"),
			tx.Direction,
			tx.Amount.StringFixed(2),
			result.Category,
			result.Confidence,
			tx.Description,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	summary := summarize(txs)
	fmt.Fprintf(out, "\n%d transactions, debits %s, credits %s\n",
		len(txs), summary.TotalDebit.StringFixed(2), summary.TotalCredit.StringFixed(2))
	return nil
}

func summarize(txs []models.ParsedTransaction) service.Summary {
	records := make([]*models.Transaction, len(txs))
	for i := range txs {
		records[i] = &models.Transaction{Amount: txs[i].Amount, Direction: txs[i].Direction}
	}
	return service.BuildSummary(records)
}
