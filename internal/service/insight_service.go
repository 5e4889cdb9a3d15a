package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const insightHelp = `Ask: "Where am I spending most?", "How much did I spend last month?", "Summarize my expenses", or "Suggest areas to save."`

type InsightKind string

const (
	InsightTopCategory InsightKind = "top_category"
	InsightLastMonth   InsightKind = "last_month"
	InsightSummary     InsightKind = "summary"
	InsightSavings     InsightKind = "savings"
	InsightFallback    InsightKind = "fallback"
)

type Insight struct {
	Kind   InsightKind
	Answer string
}

// InsightService answers a small set of canned questions from the projection aggregates.
type InsightService struct {
	reader ProjectionReader
	logger *zap.Logger
}

func NewInsightService(reader ProjectionReader, logger *zap.Logger) *InsightService {
	return &InsightService{
		reader: reader,
		logger: logger,
	}
}

func ClassifyQuestion(question string) InsightKind {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "most") && (strings.Contains(q, "spend") || strings.Contains(q, "money")):
		return InsightTopCategory
	case strings.Contains(q, "last month") || strings.Contains(q, "this month"):
		return InsightLastMonth
	case strings.Contains(q, "summar") || strings.Contains(q, "simple") || strings.Contains(q, "overview"):
		return InsightSummary
	case strings.Contains(q, "save") || strings.Contains(q, "suggest"):
		return InsightSavings
	default:
		return InsightFallback
	}
}

func (s *InsightService) Ask(ctx context.Context, userID uuid.UUID, question string) (*Insight, error) {
	txs, err := s.reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	kind := ClassifyQuestion(question)
	summary := BuildSummary(txs)
	s.logger.Debug("Answering insight question",
		zap.String("user_id", userID.String()),
		zap.String("kind", string(kind)),
	)

	if summary.Count == 0 {
		return &Insight{
			Kind:   kind,
			Answer: "No transactions yet. Upload a bank statement to get insights.",
		}, nil
	}

	var answer string
	switch kind {
	case InsightTopCategory:
		spending := BuildCategorySpending(txs)
		if len(spending) == 0 {
			answer = "You have no spending recorded yet, only incoming credits."
			break
		}
		top := spending[0]
		answer = fmt.Sprintf("You're spending most on **%s**: %s (%s%% of your debits).",
			top.Category, top.Amount.StringFixed(2), top.Percentage.StringFixed(2))

	case InsightLastMonth:
		trend := BuildMonthlyTrend(txs)
		if len(trend) == 0 {
			answer = "You have no spending recorded yet."
			break
		}
		last := trend[len(trend)-1]
		answer = fmt.Sprintf("In **%s** you spent %s, most of it on %s (%s).",
			last.Label, last.TotalSpending.StringFixed(2), last.TopCategory, last.TopCategoryAmount.StringFixed(2))
		if last.IsAnomaly {
			answer += " That is unusually high compared with your other months."
		}

	case InsightSummary:
		answer = fmt.Sprintf("You have **%d** transactions: **%s** total debits and **%s** total credits.",
			summary.Count, summary.TotalDebit.StringFixed(2), summary.TotalCredit.StringFixed(2))

	case InsightSavings:
		answer = fmt.Sprintf("Consider reviewing **%s** total debits against **%s** total credits.",
			summary.TotalDebit.StringFixed(2), summary.TotalCredit.StringFixed(2))
		if spending := BuildCategorySpending(txs); len(spending) > 0 {
			answer += fmt.Sprintf(" Your largest category is %s.", spending[0].Category)
		}
		answer += " This is not financial advice; please consult a professional for savings plans."

	default:
		answer = fmt.Sprintf("Based on your data: %d transactions, %s total debits. %s",
			summary.Count, summary.TotalDebit.StringFixed(2), insightHelp)
	}

	return &Insight{Kind: kind, Answer: answer}, nil
}
