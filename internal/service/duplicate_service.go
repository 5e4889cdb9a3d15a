package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"finflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DuplicateCheckResult classifies one candidate. InBatch is set when an earlier candidate of the
// same batch already carries the hash; ExistingID is set when a stored record does.
type DuplicateCheckResult struct {
	IsDuplicate  bool
	InBatch      bool
	ExistingID   uuid.UUID
	ExistingDate time.Time
	Hash         string
}

// TransactionHash fingerprints a transaction as
// sha256("<YYYY-MM-DD>-<amount %.2f>-<normalized description>-<userID>") in hex.
// The date is the UTC calendar day; the description is trimmed, lowercased, whitespace-collapsed
// and capped at 200 UTF-16 code units, so hashes match clients that slice JavaScript strings.
func TransactionHash(date time.Time, amount decimal.Decimal, description string, userID uuid.UUID) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(description))), " ")
	normalized = truncateUTF16(normalized, maxDescriptionLen)

	input := fmt.Sprintf("%s-%s-%s-%s",
		date.UTC().Format("2006-01-02"),
		amount.StringFixed(2),
		normalized,
		userID.String(),
	)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// truncateUTF16 keeps the first n UTF-16 code units of s. A pair cut in half leaves a lone
// high surrogate, which encodes as U+FFFD.
func truncateUTF16(s string, n int) string {
	units := utf16.Encode([]rune(s))
	if len(units) <= n {
		return s
	}
	return string(utf16.Decode(units[:n]))
}

type DuplicateService struct {
	txRepo TransactionStore
	logger *zap.Logger
}

func NewDuplicateService(txRepo TransactionStore, logger *zap.Logger) *DuplicateService {
	return &DuplicateService{
		txRepo: txRepo,
		logger: logger,
	}
}

func (s *DuplicateService) CheckDuplicate(ctx context.Context, userID uuid.UUID, date time.Time, amount decimal.Decimal, description string) (DuplicateCheckResult, error) {
	hash := TransactionHash(date, amount, description, userID)

	existing, err := s.txRepo.FindByHashes(ctx, userID, []string{hash})
	if err != nil {
		return DuplicateCheckResult{}, fmt.Errorf("failed to look up hash: %w", err)
	}
	if len(existing) == 0 {
		return DuplicateCheckResult{Hash: hash}, nil
	}

	s.logger.Info("Duplicate transaction detected",
		zap.String("hash", hash[:8]),
		zap.String("existing_id", existing[0].ID.String()),
	)
	return DuplicateCheckResult{
		IsDuplicate:  true,
		ExistingID:   existing[0].ID,
		ExistingDate: existing[0].Date,
		Hash:         hash,
	}, nil
}

// CheckDuplicates resolves a whole document in one lookup. Results are index-aligned with
// candidates.
func (s *DuplicateService) CheckDuplicates(ctx context.Context, userID uuid.UUID, candidates []models.ParsedTransaction) ([]DuplicateCheckResult, error) {
	results := make([]DuplicateCheckResult, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	hashes := make([]string, len(candidates))
	for i, c := range candidates {
		hashes[i] = TransactionHash(c.Date, c.Amount, c.Description, userID)
	}

	existing, err := s.txRepo.FindByHashes(ctx, userID, uniqueStrings(hashes))
	if err != nil {
		return nil, fmt.Errorf("failed to look up hashes: %w", err)
	}
	byHash := make(map[string]*models.Transaction, len(existing))
	for _, tx := range existing {
		if _, ok := byHash[tx.ContentHash]; !ok {
			byHash[tx.ContentHash] = tx
		}
	}

	seen := make(map[string]struct{}, len(hashes))
	for i, hash := range hashes {
		results[i].Hash = hash
		if tx, ok := byHash[hash]; ok {
			results[i].IsDuplicate = true
			results[i].ExistingID = tx.ID
			results[i].ExistingDate = tx.Date
		} else if _, ok := seen[hash]; ok {
			results[i].IsDuplicate = true
			results[i].InBatch = true
		}
		seen[hash] = struct{}{}
	}
	return results, nil
}

func (s *DuplicateService) Stats(ctx context.Context, userID uuid.UUID) (*models.DuplicateStats, error) {
	return s.txRepo.Stats(ctx, userID)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
