package dto

import (
	"finflow/internal/service"

	"github.com/shopspring/decimal"
)

type SummaryResponse struct {
	TotalDebit        decimal.Decimal `json:"totalDebit" swaggertype:"number"`
	TotalCredit       decimal.Decimal `json:"totalCredit" swaggertype:"number"`
	TotalTransactions int             `json:"totalTransactions"`
}

func NewSummaryResponse(s service.Summary) SummaryResponse {
	return SummaryResponse{
		TotalDebit:        s.TotalDebit,
		TotalCredit:       s.TotalCredit,
		TotalTransactions: s.Count,
	}
}

type CategorySpendResponse struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"number"`
	Percentage decimal.Decimal `json:"percentage" swaggertype:"number"`
}

func NewCategorySpending(items []service.CategorySpend) []CategorySpendResponse {
	out := make([]CategorySpendResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CategorySpendResponse{
			Category:   string(c.Category),
			Amount:     c.Amount,
			Percentage: c.Percentage,
		})
	}
	return out
}

type MonthlySpendResponse struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	Label             string          `json:"label"`
	TotalSpending     decimal.Decimal `json:"totalSpending" swaggertype:"number"`
	TopCategory       string          `json:"topCategory"`
	TopCategoryAmount decimal.Decimal `json:"topCategoryAmount" swaggertype:"number"`
	IsAnomaly         bool            `json:"isAnomaly"`
}

func NewMonthlyTrend(items []service.MonthlySpend) []MonthlySpendResponse {
	out := make([]MonthlySpendResponse, 0, len(items))
	for _, m := range items {
		out = append(out, MonthlySpendResponse{
			Year:              m.Year,
			Month:             m.Month,
			Label:             m.Label,
			TotalSpending:     m.TotalSpending,
			TopCategory:       string(m.TopCategory),
			TopCategoryAmount: m.TopCategoryAmount,
			IsAnomaly:         m.IsAnomaly,
		})
	}
	return out
}

type InsightRequest struct {
	Question string `json:"question"`
}

type InsightResponse struct {
	Kind   string `json:"kind"`
	Answer string `json:"answer"`
}
