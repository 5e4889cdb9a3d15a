package projection

import (
	"context"
	"fmt"

	"finflow/internal/events"
	"finflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store upserts read-model rows keyed by transaction id.
type Store interface {
	Upsert(ctx context.Context, tx *models.Transaction) error
}

// Projection applies transaction events to a Store. Applying an event twice leaves the store as
// after the first application.
type Projection struct {
	name   string
	store  Store
	logger *zap.Logger
}

func New(name string, store Store, logger *zap.Logger) *Projection {
	return &Projection{name: name, store: store, logger: logger}
}

func (p *Projection) Name() string {
	return p.name
}

func (p *Projection) Apply(ctx context.Context, e events.TransactionCreated) error {
	tx, err := ToTransaction(e)
	if err != nil {
		return err
	}
	if err := p.store.Upsert(ctx, tx); err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}
	p.logger.Debug("Projection applied", zap.String("projection", p.name), zap.String("event_id", e.ID))
	return nil
}

// ToTransaction converts a validated event back into a record without hash or audit fields.
func ToTransaction(e events.TransactionCreated) (*models.Transaction, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	id, _ := uuid.Parse(e.ID)
	userID, _ := uuid.Parse(e.UserID)
	documentID, err := uuid.Parse(e.DocumentID)
	if err != nil {
		documentID = uuid.Nil
	}
	direction, _ := models.ParseDirection(e.Direction)
	category, _ := models.ParseCategory(e.Category)

	return &models.Transaction{
		ID:          id,
		UserID:      userID,
		DocumentID:  documentID,
		Date:        e.Date.UTC(),
		Description: e.Description,
		Amount:      decimal.NewFromFloat(e.Amount).Round(2),
		Direction:   direction,
		Category:    category,
		RawMerchant: e.RawMerchant,
	}, nil
}
