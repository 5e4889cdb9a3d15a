package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"finflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

type Summary struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Count       int
}

type CategorySpend struct {
	Category   models.Category
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

type MonthlySpend struct {
	Year              int
	Month             int
	Label             string
	TotalSpending     decimal.Decimal
	TopCategory       models.Category
	TopCategoryAmount decimal.Decimal
	IsAnomaly         bool
}

// BuildSummary totals debits and credits in one pass.
func BuildSummary(transactions []*models.Transaction) Summary {
	s := Summary{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, tx := range transactions {
		switch tx.Direction {
		case models.DirectionDebit:
			s.TotalDebit = s.TotalDebit.Add(tx.Amount)
		case models.DirectionCredit:
			s.TotalCredit = s.TotalCredit.Add(tx.Amount)
		}
		s.Count++
	}
	return s
}

// BuildCategorySpending groups debits by category, largest first. Percentages are of the debit
// total, rounded half-up to 2 places; a zero total yields 0 for every category.
func BuildCategorySpending(transactions []*models.Transaction) []CategorySpend {
	totals := map[models.Category]decimal.Decimal{}
	grand := decimal.Zero
	for _, tx := range transactions {
		if tx.Direction != models.DirectionDebit {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		grand = grand.Add(tx.Amount)
	}

	out := make([]CategorySpend, 0, len(totals))
	for category, amount := range totals {
		pct := decimal.Zero
		if !grand.IsZero() {
			pct = amount.Mul(hundred).Div(grand).Round(2)
		}
		out = append(out, CategorySpend{Category: category, Amount: amount, Percentage: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// BuildMonthlyTrend groups debits by calendar month (UTC), oldest first, and flags anomalies.
func BuildMonthlyTrend(transactions []*models.Transaction) []MonthlySpend {
	type monthKey struct{ year, month int }
	type bucket struct {
		total      decimal.Decimal
		categories map[models.Category]decimal.Decimal
	}

	buckets := map[monthKey]*bucket{}
	for _, tx := range transactions {
		if tx.Direction != models.DirectionDebit {
			continue
		}
		d := tx.Date.UTC()
		key := monthKey{d.Year(), int(d.Month())}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{total: decimal.Zero, categories: map[models.Category]decimal.Decimal{}}
			buckets[key] = b
		}
		b.total = b.total.Add(tx.Amount)
		b.categories[tx.Category] = b.categories[tx.Category].Add(tx.Amount)
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthlySpend, len(keys))
	totals := make([]float64, len(keys))
	for i, k := range keys {
		b := buckets[k]
		top, topAmount := topCategory(b.categories)
		out[i] = MonthlySpend{
			Year:              k.year,
			Month:             k.month,
			Label:             fmt.Sprintf("%s %d", monthLabels[k.month-1], k.year),
			TotalSpending:     b.total,
			TopCategory:       top,
			TopCategoryAmount: topAmount,
		}
		totals[i] = b.total.InexactFloat64()
	}

	for i, anomalous := range flagAnomalies(totals) {
		out[i].IsAnomaly = anomalous
	}
	return out
}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func topCategory(categories map[models.Category]decimal.Decimal) (models.Category, decimal.Decimal) {
	var top models.Category
	topAmount := decimal.Zero
	for category, amount := range categories {
		c := amount.Cmp(topAmount)
		if top == "" || c > 0 || (c == 0 && category < top) {
			top, topAmount = category, amount
		}
	}
	return top, topAmount
}

// flagAnomalies marks a month when its total exceeds mean + 2*stddev (population) of the other
// months. With fewer than three months nothing is flagged. Against an all-months baseline
// [100 100 100 1000] could never flag 1000 (threshold ~1104); here it is flagged.
func flagAnomalies(totals []float64) []bool {
	flags := make([]bool, len(totals))
	n := len(totals)
	if n < 3 {
		return flags
	}

	var sum, sumSq float64
	for _, t := range totals {
		sum += t
		sumSq += t * t
	}
	for i, t := range totals {
		others := float64(n - 1)
		mean := (sum - t) / others
		variance := (sumSq-t*t)/others - mean*mean
		if variance < 0 {
			variance = 0
		}
		flags[i] = t > mean+2*math.Sqrt(variance)
	}
	return flags
}

// Page is one slice of a filtered transaction listing.
type Page struct {
	Items    []*models.Transaction
	Total    int
	Page     int
	PageSize int
}

// ListQuery is the caller-facing listing request; zero page values take defaults.
type ListQuery struct {
	Search    string
	Category  string
	Direction string
	DateFrom  *string
	DateTo    *string
	Page      int
	PageSize  int
}

// AnalyticsService answers aggregate queries from the projection read model.
type AnalyticsService struct {
	reader ProjectionReader
	logger *zap.Logger
}

func NewAnalyticsService(reader ProjectionReader, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		reader: reader,
		logger: logger,
	}
}

func (s *AnalyticsService) GetSummary(ctx context.Context, userID uuid.UUID) (Summary, error) {
	txs, err := s.reader.ListByUser(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	return BuildSummary(txs), nil
}

func (s *AnalyticsService) GetCategorySpending(ctx context.Context, userID uuid.UUID) ([]CategorySpend, error) {
	txs, err := s.reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return BuildCategorySpending(txs), nil
}

func (s *AnalyticsService) GetMonthlyTrend(ctx context.Context, userID uuid.UUID) ([]MonthlySpend, error) {
	txs, err := s.reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return BuildMonthlyTrend(txs), nil
}

// List pages through a user's transactions. page defaults to 1, pageSize to 20 and is capped at 100.
func (s *AnalyticsService) List(ctx context.Context, userID uuid.UUID, q ListQuery) (*Page, error) {
	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := models.TransactionFilter{
		UserID: userID,
		Search: q.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if q.Category != "" {
		category, ok := models.ParseCategory(q.Category)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, q.Category)
		}
		filter.Category = category
	}
	if q.Direction != "" {
		direction, ok := models.ParseDirection(q.Direction)
		if !ok {
			return nil, fmt.Errorf("%w: direction %q", ErrInvalidQuery, q.Direction)
		}
		filter.Direction = direction
	}
	if q.DateFrom != nil {
		d, ok := ParseStatementDate(*q.DateFrom)
		if !ok {
			return nil, fmt.Errorf("%w: dateFrom %q", ErrInvalidQuery, *q.DateFrom)
		}
		filter.DateFrom = &d
	}
	if q.DateTo != nil {
		d, ok := ParseStatementDate(*q.DateTo)
		if !ok {
			return nil, fmt.Errorf("%w: dateTo %q", ErrInvalidQuery, *q.DateTo)
		}
		end := d.AddDate(0, 0, 1).Add(-1)
		filter.DateTo = &end
	}

	items, total, err := s.reader.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}
	return &Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
