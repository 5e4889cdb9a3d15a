package projection

import (
	"context"
	"fmt"

	"finflow/internal/models"
	"finflow/pkg/config"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"go.uber.org/zap"
)

// BigQueryStore mirrors transactions into a warehouse table with a MERGE keyed by id, so
// redelivered events update rather than duplicate.
type BigQueryStore struct {
	client  *bigquery.Client
	dataset string
	table   string
	logger  *zap.Logger
}

func NewBigQueryStore(ctx context.Context, cfg *config.BigQueryConfig, logger *zap.Logger) (*BigQueryStore, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &BigQueryStore{
		client:  client,
		dataset: cfg.Dataset,
		table:   cfg.Table,
		logger:  logger,
	}, nil
}

func (s *BigQueryStore) Upsert(ctx context.Context, tx *models.Transaction) error {
	q := s.client.Query(fmt.Sprintf(`
		MERGE %s.%s T
		USING (SELECT
			@transaction_id AS transaction_id,
			@user_id AS user_id,
			@document_id AS document_id,
			@transaction_date AS transaction_date,
			@amount AS amount,
			@direction AS direction,
			@description AS description,
			@category_name AS category_name,
			@raw_merchant AS raw_merchant
		) S
		ON T.transaction_id = S.transaction_id
		WHEN MATCHED THEN UPDATE SET
			category_name = S.category_name,
			description = S.description,
			updated_ts = CURRENT_TIMESTAMP()
		WHEN NOT MATCHED THEN INSERT (
			transaction_id, user_id, document_id, transaction_date, amount, direction,
			description, category_name, raw_merchant, created_ts
		) VALUES (
			S.transaction_id, S.user_id, S.document_id, S.transaction_date, S.amount, S.direction,
			S.description, S.category_name, S.raw_merchant, CURRENT_TIMESTAMP()
		)
	`, s.dataset, s.table))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: tx.ID.String()},
		{Name: "user_id", Value: tx.UserID.String()},
		{Name: "document_id", Value: tx.DocumentID.String()},
		{Name: "transaction_date", Value: civil.DateOf(tx.Date)},
		{Name: "amount", Value: tx.Amount.Rat()},
		{Name: "direction", Value: string(tx.Direction)},
		{Name: "description", Value: tx.Description},
		{Name: "category_name", Value: string(tx.Category)},
		{Name: "raw_merchant", Value: tx.RawMerchant},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("bigquery merge: running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("bigquery merge: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("bigquery merge: job error: %w", err)
	}
	return nil
}

func (s *BigQueryStore) Close() error {
	return s.client.Close()
}

var _ Store = (*BigQueryStore)(nil)
