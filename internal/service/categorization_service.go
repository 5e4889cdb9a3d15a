package service

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultRulesYAML []byte

// KeywordGroup is one category with its keywords, kept in file order.
type KeywordGroup struct {
	Category models.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// CategoryRules is the static configuration the heuristics run on. It is never mutated after load.
type CategoryRules struct {
	SmallAmountThreshold int64          `yaml:"small_amount_threshold"`
	PaymentApps          []string       `yaml:"payment_apps"`
	BillKeywords         []string       `yaml:"bill_keywords"`
	SubscriptionAmounts  []int64        `yaml:"subscription_amounts"`
	BeneficiaryKeywords  []KeywordGroup `yaml:"beneficiary_keywords"`
	DescriptionKeywords  []KeywordGroup `yaml:"description_keywords"`

	subscriptions map[int64]struct{}
}

// ParseCategoryRules decodes a rules document and validates every category name.
func ParseCategoryRules(data []byte) (*CategoryRules, error) {
	var rules CategoryRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse category rules: %w", err)
	}

	for _, groups := range [][]KeywordGroup{rules.BeneficiaryKeywords, rules.DescriptionKeywords} {
		for i := range groups {
			category, ok := models.ParseCategory(string(groups[i].Category))
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, groups[i].Category)
			}
			groups[i].Category = category
			lowerAll(groups[i].Keywords)
		}
	}

	lowerAll(rules.PaymentApps)
	lowerAll(rules.BillKeywords)

	rules.subscriptions = make(map[int64]struct{}, len(rules.SubscriptionAmounts))
	for _, a := range rules.SubscriptionAmounts {
		rules.subscriptions[a] = struct{}{}
	}
	return &rules, nil
}

// DefaultCategoryRules returns the embedded rule table.
func DefaultCategoryRules() *CategoryRules {
	return defaultRules
}

var defaultRules = mustParseRules(defaultRulesYAML)

func mustParseRules(data []byte) *CategoryRules {
	rules, err := ParseCategoryRules(data)
	if err != nil {
		panic(err)
	}
	return rules
}

type CategorizationResult struct {
	Category   models.Category
	Confidence models.Confidence
	Reason     string
}

type CategorizationService struct {
	rules      *CategoryRules
	classifier Classifier
	sem        *semaphore.Weighted
	timeout    time.Duration
	logger     *zap.Logger
}

// NewCategorizationService builds the engine. concurrency bounds in-flight classifier calls
// across all documents; timeout applies to each call.
func NewCategorizationService(rules *CategoryRules, classifier Classifier, concurrency int, timeout time.Duration, logger *zap.Logger) *CategorizationService {
	if rules == nil {
		rules = DefaultCategoryRules()
	}
	if classifier == nil {
		classifier = DisabledClassifier{}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &CategorizationService{
		rules:      rules,
		classifier: classifier,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		timeout:    timeout,
		logger:     logger,
	}
}

// Categorize always returns a usable result. The classifier is consulted only for low-confidence
// heuristic results, and only a medium or high answer replaces them.
func (s *CategorizationService) Categorize(ctx context.Context, description string, amount decimal.Decimal, date *time.Time) CategorizationResult {
	result := s.CategorizeHeuristic(description, amount)
	if result.Confidence != models.ConfidenceLow || !s.classifier.Enabled() {
		return result
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return result
	}
	defer s.sem.Release(1)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	refined, err := s.classifier.Classify(callCtx, ClassificationRequest{
		Description: description,
		Amount:      amount,
		Date:        date,
		Categories:  models.Categories,
	})
	if err != nil {
		s.logger.Warn("Classifier failed, keeping heuristic category",
			zap.String("classifier", s.classifier.Name()),
			zap.String("category", string(result.Category)),
			zap.Error(err),
		)
		return result
	}
	if refined == nil || refined.Confidence == models.ConfidenceLow {
		return result
	}

	reason := refined.Reason
	if reason == "" {
		reason = "Improved categorization"
	}
	s.logger.Debug("Classifier refined category",
		zap.String("from", string(result.Category)),
		zap.String("to", string(refined.Category)),
	)
	return CategorizationResult{
		Category:   refined.Category,
		Confidence: refined.Confidence,
		Reason:     s.classifier.Name() + ": " + reason,
	}
}

// CategorizeHeuristic runs the deterministic rules only.
func (s *CategorizationService) CategorizeHeuristic(description string, amount decimal.Decimal) CategorizationResult {
	lowerDesc := strings.ToLower(strings.TrimSpace(description))

	if ref := ParseReference(description); ref.IsStructured {
		return s.categorizeReference(ref, amount, lowerDesc)
	}
	return s.categorizeByKeywords(lowerDesc, amount)
}

func (s *CategorizationService) categorizeReference(ref ReferenceDescriptor, amount decimal.Decimal, lowerDesc string) CategorizationResult {
	name := strings.ToLower(ref.BeneficiaryName)
	small := amount.LessThan(decimal.NewFromInt(s.rules.SmallAmountThreshold))

	if containsAnyIn(s.rules.PaymentApps, name, lowerDesc) {
		return CategorizationResult{models.CategoryOnlinePayments, models.ConfidenceHigh, "Detected payment app"}
	}

	switch ref.TransferType {
	case TransferP2V:
		switch {
		case small:
			return CategorizationResult{models.CategoryFood, models.ConfidenceMedium, "P2V transaction with small amount"}
		case isRoundAmount(amount):
			return CategorizationResult{models.CategoryOthers, models.ConfidenceMedium, "P2V transaction with round amount (likely transfer)"}
		default:
			return CategorizationResult{models.CategoryShopping, models.ConfidenceLow, "P2V transaction"}
		}
	case TransferP2M:
		switch {
		case s.isSubscriptionAmount(amount):
			return CategorizationResult{models.CategoryBills, models.ConfidenceHigh, "P2M transaction with subscription-like amount"}
		case containsAnyIn(s.rules.BillKeywords, name, lowerDesc):
			return CategorizationResult{models.CategoryBills, models.ConfidenceHigh, "P2M transaction with bill payment keyword"}
		case small:
			return CategorizationResult{models.CategoryFood, models.ConfidenceMedium, "P2M transaction with small amount"}
		default:
			return CategorizationResult{models.CategoryShopping, models.ConfidenceMedium, "P2M transaction"}
		}
	}

	switch {
	case small:
		return CategorizationResult{models.CategoryFood, models.ConfidenceLow, "Small amount"}
	case isRoundAmount(amount):
		return CategorizationResult{models.CategoryOthers, models.ConfidenceLow, "Round amount (likely transfer/withdrawal)"}
	case s.isSubscriptionAmount(amount):
		return CategorizationResult{models.CategoryBills, models.ConfidenceMedium, "Exact subscription-like amount"}
	}

	for _, group := range s.rules.BeneficiaryKeywords {
		if containsAnyIn(group.Keywords, name) {
			return CategorizationResult{group.Category, models.ConfidenceMedium, "Matched beneficiary name keywords"}
		}
	}
	return CategorizationResult{models.CategoryOthers, models.ConfidenceLow, "Unable to categorize payment reference"}
}

func (s *CategorizationService) categorizeByKeywords(lowerDesc string, amount decimal.Decimal) CategorizationResult {
	for _, group := range s.rules.DescriptionKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(lowerDesc, kw) {
				return CategorizationResult{group.Category, models.ConfidenceHigh, "Matched keyword: " + kw}
			}
		}
	}

	if amount.LessThan(decimal.NewFromInt(s.rules.SmallAmountThreshold)) {
		return CategorizationResult{models.CategoryFood, models.ConfidenceLow, "Small amount"}
	}
	return CategorizationResult{models.CategoryOthers, models.ConfidenceLow, "No matching keywords found"}
}

func (s *CategorizationService) isSubscriptionAmount(amount decimal.Decimal) bool {
	_, ok := s.rules.subscriptions[amount.Round(0).IntPart()]
	return ok
}

var hundred = decimal.NewFromInt(100)

func isRoundAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(hundred) && amount.Mod(hundred).IsZero()
}

func lowerAll(words []string) {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
}

func containsAnyIn(keywords []string, haystacks ...string) bool {
	for _, kw := range keywords {
		for _, h := range haystacks {
			if strings.Contains(h, kw) {
				return true
			}
		}
	}
	return false
}
