package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTravel         Category = "Travel"
	CategoryShopping       Category = "Shopping"
	CategoryBills          Category = "Bills"
	CategoryEntertainment  Category = "Entertainment"
	CategoryOnlinePayments Category = "OnlinePayments"
	CategoryOthers         Category = "Others"
)

// Categories is the closed category set in declaration order.
var Categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryOnlinePayments,
	CategoryOthers,
}

// ParseCategory matches s case-insensitively against the closed category set.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

func ParseDirection(s string) (Direction, bool) {
	switch {
	case strings.EqualFold(s, string(DirectionDebit)):
		return DirectionDebit, true
	case strings.EqualFold(s, string(DirectionCredit)):
		return DirectionCredit, true
	}
	return "", false
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func ParseConfidence(s string) (Confidence, bool) {
	for _, c := range []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow} {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// ParsedTransaction is a candidate produced by the line parser and enriched by categorization.
// Amount is always a positive magnitude; the sign lives in Direction.
type ParsedTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Direction   Direction
	Category    Category
	RawMerchant string
	Confidence  Confidence
	Reason      string
}

// Transaction is the persisted record. Only Category changes after insert.
type Transaction struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	DocumentID  uuid.UUID       `db:"document_id"`
	Date        time.Time       `db:"date"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	Direction   Direction       `db:"direction"`
	Category    Category        `db:"category"`
	RawMerchant string          `db:"raw_merchant"`
	ContentHash string          `db:"content_hash"`
	IsDuplicate bool            `db:"is_duplicate"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
