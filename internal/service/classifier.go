package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
)

const maxExtractionPromptText = 8000

// ClassificationRequest is what an external classifier sees for one transaction.
type ClassificationRequest struct {
	Description string
	Amount      decimal.Decimal
	Date        *time.Time
	Categories  []models.Category
}

type ClassificationResult struct {
	Category   models.Category
	Confidence models.Confidence
	Reason     string
}

// Classifier is the optional external model used when the heuristics are unsure, and to
// re-derive transactions from raw text when line parsing finds nothing.
type Classifier interface {
	Name() string
	Enabled() bool
	Classify(ctx context.Context, req ClassificationRequest) (*ClassificationResult, error)
	ExtractTransactions(ctx context.Context, text string) ([]models.ParsedTransaction, error)
}

// DisabledClassifier is selected when no provider is configured.
type DisabledClassifier struct{}

func (DisabledClassifier) Name() string  { return "none" }
func (DisabledClassifier) Enabled() bool { return false }

func (DisabledClassifier) Classify(context.Context, ClassificationRequest) (*ClassificationResult, error) {
	return nil, ErrClassifierDisabled
}

func (DisabledClassifier) ExtractTransactions(context.Context, string) ([]models.ParsedTransaction, error) {
	return nil, ErrClassifierDisabled
}

const classifierSystemInstruction = `You are a financial transaction categorization assistant.
Analyze transaction descriptions and categorize them into exactly one of these categories:
- Food: Restaurants, cafes, food delivery, groceries
- Travel: Transportation, hotels, flights, fuel, parking
- Shopping: Online/offline purchases, retail stores
- Bills: Utilities, subscriptions, insurance, rent, loans
- Entertainment: Movies, games, streaming services, gym, events
- OnlinePayments: Payment apps like PhonePe, GooglePay, Paytm
- Others: Everything else that doesn't fit above categories
Return only valid JSON, without markdown and without commentary.`

func buildClassificationPrompt(req ClassificationRequest) string {
	names := make([]string, len(req.Categories))
	for i, c := range req.Categories {
		names[i] = string(c)
	}
	date := "unknown"
	if req.Date != nil {
		date = req.Date.Format("2006-01-02")
	}

	return fmt.Sprintf(`Categorize this bank transaction.

Description: %s
Amount: %s
Date: %s

Return a JSON object with this exact structure:
{"category": "%s", "confidence": "high|medium|low", "reason": "brief explanation"}`,
		req.Description, req.Amount.StringFixed(2), date, strings.Join(names, "|"))
}

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract all financial transactions from the following bank statement text.
Return a JSON object with a "transactions" array in this exact structure:
{
  "transactions": [
    {
      "date": "YYYY-MM-DD",
      "description": "transaction description",
      "amount": 123.45,
      "type": "debit|credit",
      "category": "Food|Travel|Shopping|Bills|Entertainment|OnlinePayments|Others"
    }
  ]
}
Use "debit" for money going out and "credit" for money coming in. Amounts are positive numbers
without currency symbols. If there are no transactions return {"transactions": []}.

Bank statement text:
%s`, truncateRunes(text, maxExtractionPromptText))
}

// extractJSON cuts the first open..last close span out of a model reply, dropping markdown fences.
func extractJSON(content string, open, close string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, open)
	end := strings.LastIndex(content, close)
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON found in response: %s", truncateRunes(content, 200))
	}
	return content[start : end+1], nil
}

type classificationPayload struct {
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// parseClassification maps an unknown category to Others and an unknown confidence to medium.
func parseClassification(content string) (*ClassificationResult, error) {
	raw, err := extractJSON(content, "{", "}")
	if err != nil {
		return nil, err
	}
	var p classificationPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}

	category, ok := models.ParseCategory(strings.TrimSpace(p.Category))
	if !ok {
		category = models.CategoryOthers
	}
	confidence, ok := models.ParseConfidence(strings.TrimSpace(p.Confidence))
	if !ok {
		confidence = models.ConfidenceMedium
	}
	return &ClassificationResult{Category: category, Confidence: confidence, Reason: p.Reason}, nil
}

type extractedPayload struct {
	Transactions []struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        string          `json:"type"`
		Category    string          `json:"category"`
	} `json:"transactions"`
}

// parseExtractedTransactions drops rows without a usable date, description or amount.
func parseExtractedTransactions(content string) ([]models.ParsedTransaction, error) {
	raw, err := extractJSON(content, "{", "}")
	if err != nil {
		return nil, err
	}
	var p extractedPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse extracted transactions: %w", err)
	}

	out := make([]models.ParsedTransaction, 0, len(p.Transactions))
	for _, t := range p.Transactions {
		date, ok := ParseStatementDate(t.Date)
		description := collapseSpaces(sanitizeText(t.Description))
		if !ok || description == "" || t.Amount.IsZero() {
			continue
		}
		direction, ok := models.ParseDirection(strings.TrimSpace(t.Type))
		if !ok {
			direction = models.DirectionDebit
		}
		category, ok := models.ParseCategory(strings.TrimSpace(t.Category))
		if !ok {
			category = models.CategoryOthers
		}
		out = append(out, models.ParsedTransaction{
			Date:        date,
			Description: truncateRunes(description, maxDescriptionLen),
			Amount:      t.Amount.Abs(),
			Direction:   direction,
			Category:    category,
			RawMerchant: truncateRunes(description, maxMerchantLen),
			Confidence:  models.ConfidenceMedium,
		})
	}
	return out, nil
}
