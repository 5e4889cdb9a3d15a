package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finflow/internal/models"

	"github.com/google/uuid"
)

// DefaultTopic is the logical topic transaction events are published to.
const DefaultTopic = "transactions.created"

var ErrMalformedEvent = errors.New("malformed transaction event")

// TransactionCreated mirrors a persisted transaction. Consumers upsert by ID.
type TransactionCreated struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	DocumentID  string    `json:"documentId"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Direction   string    `json:"direction"`
	Category    string    `json:"category"`
	RawMerchant string    `json:"rawMerchant,omitempty"`
}

// Publisher sends events; delivery is at-least-once and ordered per user.
type Publisher interface {
	Publish(ctx context.Context, events []TransactionCreated) error
}

// Handler applies one event. It must be idempotent on event ID.
type Handler func(ctx context.Context, event TransactionCreated) error

func FromTransaction(tx *models.Transaction) TransactionCreated {
	return TransactionCreated{
		ID:          tx.ID.String(),
		UserID:      tx.UserID.String(),
		DocumentID:  tx.DocumentID.String(),
		Date:        tx.Date.UTC(),
		Description: tx.Description,
		Amount:      tx.Amount.InexactFloat64(),
		Direction:   string(tx.Direction),
		Category:    string(tx.Category),
		RawMerchant: tx.RawMerchant,
	}
}

func Encode(e TransactionCreated) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses and validates a message body.
func Decode(data []byte) (TransactionCreated, error) {
	var e TransactionCreated
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionCreated{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return TransactionCreated{}, err
	}
	return e, nil
}

func (e TransactionCreated) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("%w: bad id %q", ErrMalformedEvent, e.ID)
	}
	if _, err := uuid.Parse(e.UserID); err != nil {
		return fmt.Errorf("%w: bad userId %q", ErrMalformedEvent, e.UserID)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrMalformedEvent)
	}
	if _, ok := models.ParseDirection(e.Direction); !ok {
		return fmt.Errorf("%w: bad direction %q", ErrMalformedEvent, e.Direction)
	}
	if _, ok := models.ParseCategory(e.Category); !ok {
		return fmt.Errorf("%w: bad category %q", ErrMalformedEvent, e.Category)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrMalformedEvent)
	}
	return nil
}

// Subscriber delivers events to named consumer groups. Every group sees every event.
type Subscriber interface {
	Subscribe(group string, handler Handler) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
