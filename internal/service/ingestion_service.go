package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finflow/internal/events"
	"finflow/internal/models"
	"finflow/internal/repository"
	"finflow/internal/storage"
	"finflow/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DuplicatePolicy decides what happens to candidates whose hash is already taken.
type DuplicatePolicy string

const (
	DuplicatePolicySkip DuplicatePolicy = "skip"
	DuplicatePolicyKeep DuplicatePolicy = "keep"
)

func ParseDuplicatePolicy(s string) DuplicatePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(DuplicatePolicyKeep)) {
		return DuplicatePolicyKeep
	}
	return DuplicatePolicySkip
}

// IngestionJob is one queued document. Password lives only here, never in the database.
type IngestionJob struct {
	UserID     uuid.UUID
	DocumentID uuid.UUID
	StorageKey string
	Password   string
}

type IngestionResult struct {
	Status     models.DocumentStatus
	Created    int
	Duplicates int
}

type IngestionOptions struct {
	Workers               int
	QueueSize             int
	DuplicatePolicy       DuplicatePolicy
	CategorizeConcurrency int
	MaxFileSize           int
}

// IngestionService drives a statement from upload to persisted, published transactions.
type IngestionService struct {
	docRepo     DocumentStore
	txRepo      TransactionStore
	store       storage.Store
	extractor   TextExtractor
	categorizer *CategorizationService
	duplicates  *DuplicateService
	classifier  Classifier
	publisher   events.Publisher
	opts        IngestionOptions
	logger      *zap.Logger

	jobs      chan IngestionJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

func NewIngestionService(
	docRepo DocumentStore,
	txRepo TransactionStore,
	store storage.Store,
	extractor TextExtractor,
	categorizer *CategorizationService,
	duplicates *DuplicateService,
	classifier Classifier,
	publisher events.Publisher,
	opts IngestionOptions,
	logger *zap.Logger,
) *IngestionService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.CategorizeConcurrency <= 0 {
		opts.CategorizeConcurrency = 4
	}
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = DuplicatePolicySkip
	}
	if classifier == nil {
		classifier = DisabledClassifier{}
	}

	return &IngestionService{
		docRepo:     docRepo,
		txRepo:      txRepo,
		store:       store,
		extractor:   extractor,
		categorizer: categorizer,
		duplicates:  duplicates,
		classifier:  classifier,
		publisher:   publisher,
		opts:        opts,
		logger:      logger,
		jobs:        make(chan IngestionJob, opts.QueueSize),
		closeChan:   make(chan struct{}),
	}
}

// Start launches the background workers. Jobs run with ctx, which should outlive requests.
func (s *IngestionService) Start(ctx context.Context) {
	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	s.logger.Info("Ingestion workers started", zap.Int("workers", s.opts.Workers))
}

func (s *IngestionService) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closeChan:
			return
		case job := <-s.jobs:
			if _, err := s.Process(ctx, job); err != nil {
				s.logger.Error("Document ingestion failed",
					zap.String("document_id", job.DocumentID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

// Stop rejects new uploads and waits for in-flight documents.
func (s *IngestionService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.closeChan)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit stores the statement, records it as uploaded and queues it for background processing.
// It returns as soon as the bytes are stored.
func (s *IngestionService) Submit(ctx context.Context, userID uuid.UUID, fileName string, data []byte, password string) (*models.Document, error) {
	if fileName == "" {
		fileName = "statement.pdf"
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".pdf" {
		return nil, ErrUnsupportedFile
	}
	if s.opts.MaxFileSize > 0 && len(data) > s.opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrQueueClosed
	}

	documentID := uuid.New()
	storageKey := fmt.Sprintf("%s/%s%s", userID, documentID, ext)

	if err := s.store.Put(ctx, storageKey, data); err != nil {
		return nil, fmt.Errorf("failed to store statement: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:         documentID,
		UserID:     userID,
		FileName:   sanitizeText(fileName),
		StorageKey: storageKey,
		Status:     models.DocumentStatusUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	job := IngestionJob{UserID: userID, DocumentID: documentID, StorageKey: storageKey, Password: password}
	select {
	case <-s.closeChan:
		s.reject(ctx, job, ErrQueueClosed)
		return nil, ErrQueueClosed
	default:
	}
	select {
	case s.jobs <- job:
	default:
		s.reject(ctx, job, ErrQueueFull)
		return nil, ErrQueueFull
	}

	s.logger.Info("Statement accepted",
		zap.String("user_id", userID.String()),
		zap.String("document_id", documentID.String()),
		zap.Int("bytes", len(data)),
	)
	return doc, nil
}

// Process runs one document through extract, parse, categorize, dedup, persist and publish.
// The returned error is non-nil only when the document ends up failed.
func (s *IngestionService) Process(ctx context.Context, job IngestionJob) (*IngestionResult, error) {
	log := logger.ForDocument(s.logger, job.UserID.String(), job.DocumentID.String())

	if err := s.docRepo.UpdateStatus(ctx, models.DocumentStatusUpdate{
		ID:     job.DocumentID,
		Status: models.DocumentStatusExtracting,
	}); err != nil {
		return nil, fmt.Errorf("failed to mark document extracting: %w", err)
	}

	data, err := s.store.Get(ctx, job.StorageKey)
	if err != nil {
		return s.fail(ctx, log, job, fmt.Errorf("%w: storage read: %v", ErrExtraction, err))
	}

	text, err := s.extractor.ExtractText(ctx, data, job.Password)
	if err != nil {
		if !errors.Is(err, ErrExtraction) {
			err = fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		return s.fail(ctx, log, job, err)
	}

	candidates := ParseStatementText(text)
	log.Info("Statement parsed", zap.Int("candidates", len(candidates)))

	precategorized := false
	if len(candidates) == 0 && text != "" && s.classifier.Enabled() {
		extracted, err := s.classifier.ExtractTransactions(ctx, text)
		if err != nil {
			log.Warn("Classifier extraction fallback failed", zap.Error(err))
		} else if len(extracted) > 0 {
			log.Info("Classifier extracted transactions", zap.Int("count", len(extracted)))
			for i := range extracted {
				extracted[i].Reason = s.classifier.Name() + ": extracted from statement text"
			}
			candidates = extracted
			precategorized = true
		}
	}

	if !precategorized {
		if err := s.categorizeAll(ctx, candidates); err != nil {
			return s.fail(ctx, log, job, err)
		}
	}

	checks, err := s.duplicates.CheckDuplicates(ctx, job.UserID, candidates)
	if err != nil {
		return s.fail(ctx, log, job, fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	now := time.Now().UTC()
	records := make([]*models.Transaction, 0, len(candidates))
	duplicates := 0
	for i, c := range candidates {
		if checks[i].IsDuplicate {
			duplicates++
			if s.opts.DuplicatePolicy == DuplicatePolicySkip {
				continue
			}
		}
		records = append(records, &models.Transaction{
			ID:          uuid.New(),
			UserID:      job.UserID,
			DocumentID:  job.DocumentID,
			Date:        c.Date,
			Description: sanitizeText(c.Description),
			Amount:      c.Amount,
			Direction:   c.Direction,
			Category:    c.Category,
			RawMerchant: sanitizeText(c.RawMerchant),
			ContentHash: checks[i].Hash,
			IsDuplicate: checks[i].IsDuplicate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.txRepo.CreateBatch(ctx, records); err != nil {
		if errors.Is(err, repository.ErrDuplicateHash) {
			log.Warn("Concurrent ingestion committed the same transactions first")
		}
		return s.fail(ctx, log, job, fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	var created []events.TransactionCreated
	for _, r := range records {
		if !r.IsDuplicate {
			created = append(created, events.FromTransaction(r))
		}
	}
	if len(created) > 0 {
		if err := s.publisher.Publish(ctx, created); err != nil {
			log.Error("Failed to publish transaction events", zap.Int("count", len(created)), zap.Error(err))
		}
	}

	count, dupCount := len(records), duplicates
	if err := s.docRepo.UpdateStatus(ctx, models.DocumentStatusUpdate{
		ID:               job.DocumentID,
		Status:           models.DocumentStatusCompleted,
		TransactionCount: &count,
		DuplicateCount:   &dupCount,
	}); err != nil {
		log.Error("Failed to mark document completed", zap.Error(err))
	}

	log.Info("Document processed",
		zap.Int("created", len(records)),
		zap.Int("duplicates", duplicates),
	)
	return &IngestionResult{
		Status:     models.DocumentStatusCompleted,
		Created:    len(records),
		Duplicates: duplicates,
	}, nil
}

func (s *IngestionService) categorizeAll(ctx context.Context, candidates []models.ParsedTransaction) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.CategorizeConcurrency)

	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			date := c.Date
			result := s.categorizer.Categorize(gctx, c.Description, c.Amount, &date)
			c.Category = result.Category
			c.Confidence = result.Confidence
			c.Reason = result.Reason
			return nil
		})
	}
	return g.Wait()
}

func (s *IngestionService) fail(ctx context.Context, log *zap.Logger, job IngestionJob, cause error) (*IngestionResult, error) {
	msg := cause.Error()
	log.Error("Document failed", zap.Error(cause))

	if err := s.docRepo.UpdateStatus(ctx, models.DocumentStatusUpdate{
		ID:           job.DocumentID,
		Status:       models.DocumentStatusFailed,
		ErrorMessage: &msg,
	}); err != nil {
		log.Error("Failed to mark document failed", zap.Error(err))
	}
	return &IngestionResult{Status: models.DocumentStatusFailed}, cause
}

// reject marks a recorded but unqueued document failed so it never sits in uploaded.
func (s *IngestionService) reject(ctx context.Context, job IngestionJob, cause error) {
	msg := cause.Error()
	if err := s.docRepo.UpdateStatus(ctx, models.DocumentStatusUpdate{
		ID:           job.DocumentID,
		Status:       models.DocumentStatusFailed,
		ErrorMessage: &msg,
	}); err != nil {
		s.logger.Error("Failed to mark rejected document failed",
			zap.String("document_id", job.DocumentID.String()),
			zap.Error(err),
		)
	}
	s.logger.Warn("Statement rejected",
		zap.String("document_id", job.DocumentID.String()),
		zap.Error(cause),
	)
}

func (s *IngestionService) GetStatus(ctx context.Context, userID, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, userID, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *IngestionService) ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.docRepo.ListByUserID(ctx, userID, limit, offset)
}
