package dto

import (
	"time"

	"finflow/internal/models"
)

type UploadDocumentResponse struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}

type DocumentResponse struct {
	ID               string  `json:"id"`
	FileName         string  `json:"filename"`
	Status           string  `json:"status"`
	ErrorMessage     *string `json:"errorMessage,omitempty"`
	TransactionCount *int    `json:"transactionCount,omitempty"`
	DuplicateCount   *int    `json:"duplicateCount,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func NewDocumentResponse(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID.String(),
		FileName:         doc.FileName,
		Status:           string(doc.Status),
		ErrorMessage:     doc.ErrorMessage,
		TransactionCount: doc.TransactionCount,
		DuplicateCount:   doc.DuplicateCount,
		CreatedAt:        doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        doc.UpdatedAt.Format(time.RFC3339),
	}
}

func NewDocumentList(docs []*models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, NewDocumentResponse(d))
	}
	return out
}
