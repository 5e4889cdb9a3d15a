package dto

import (
	"finflow/internal/models"

	"github.com/shopspring/decimal"
)

type TransactionResponse struct {
	ID          string          `json:"id"`
	DocumentID  string          `json:"documentId"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number"`
	Direction   string          `json:"direction"`
	Category    string          `json:"category"`
	RawMerchant string          `json:"rawMerchant,omitempty"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		DocumentID:  tx.DocumentID.String(),
		Date:        tx.Date.UTC().Format("2006-01-02"),
		Description: tx.Description,
		Amount:      tx.Amount,
		Direction:   string(tx.Direction),
		Category:    string(tx.Category),
		RawMerchant: tx.RawMerchant,
	}
}

type TransactionListResponse struct {
	Items    []TransactionResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

func NewTransactionList(items []*models.Transaction, total, page, pageSize int) TransactionListResponse {
	out := TransactionListResponse{
		Items:    make([]TransactionResponse, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, tx := range items {
		out.Items = append(out.Items, NewTransactionResponse(tx))
	}
	return out
}

type RecategorizeRequest struct {
	Category string `json:"category"`
}

type DuplicateStatsResponse struct {
	Total      int `json:"total"`
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
}

type ResyncResponse struct {
	Published int `json:"published"`
}
