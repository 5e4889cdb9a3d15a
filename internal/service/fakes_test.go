package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"finflow/internal/events"
	"finflow/internal/models"
	"finflow/internal/repository"
	"finflow/internal/storage"

	"github.com/google/uuid"
)

type memTransactions struct {
	mu        sync.Mutex
	rows      []*models.Transaction
	createErr error
}

func (m *memTransactions) CreateBatch(_ context.Context, txs []*models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}

	taken := map[string]bool{}
	for _, r := range m.rows {
		if !r.IsDuplicate {
			taken[r.UserID.String()+r.ContentHash] = true
		}
	}
	for _, tx := range txs {
		if tx.IsDuplicate {
			continue
		}
		key := tx.UserID.String() + tx.ContentHash
		if taken[key] {
			return errors.Join(repository.ErrDuplicateHash, fmt.Errorf("hash %s", tx.ContentHash))
		}
		taken[key] = true
	}
	for _, tx := range txs {
		cp := *tx
		m.rows = append(m.rows, &cp)
	}
	return nil
}

func (m *memTransactions) FindByHashes(_ context.Context, userID uuid.UUID, hashes []string) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, h := range hashes {
		want[h] = true
	}
	var out []*models.Transaction
	for _, r := range m.rows {
		if r.UserID == userID && want[r.ContentHash] {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return !out[i].IsDuplicate && out[j].IsDuplicate })
	return out, nil
}

func (m *memTransactions) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTransactions) UpdateCategory(_ context.Context, userID, id uuid.UUID, category models.Category) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.ID == id {
			r.Category = category
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTransactions) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, r := range m.rows {
		if r.UserID == userID && !r.IsDuplicate {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTransactions) Stats(_ context.Context, userID uuid.UUID) (*models.DuplicateStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.DuplicateStats
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		s.Total++
		if r.IsDuplicate {
			s.Duplicates++
		} else {
			s.Unique++
		}
	}
	return &s, nil
}

func (m *memTransactions) all() []*models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Transaction(nil), m.rows...)
}

type memDocuments struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: map[uuid.UUID]*models.Document{}}
}

func (m *memDocuments) Create(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memDocuments) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || doc.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *memDocuments) UpdateStatus(_ context.Context, u models.DocumentStatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[u.ID]
	if !ok || doc.Status.Terminal() {
		return repository.ErrNotFound
	}
	doc.Status = u.Status
	doc.ErrorMessage = u.ErrorMessage
	doc.TransactionCount = u.TransactionCount
	doc.DuplicateCount = u.DuplicateCount
	return nil
}

func (m *memDocuments) ListByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Document
	for _, d := range m.docs {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

// textExtractor treats the stored bytes as the statement text.
type textExtractor struct {
	err error
}

func (e textExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return string(data), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TransactionCreated
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evs []events.TransactionCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evs...)
	return nil
}

func (p *recordingPublisher) published() []events.TransactionCreated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.TransactionCreated(nil), p.events...)
}

type stubClassifier struct {
	mu        sync.Mutex
	calls     int
	result    *ClassificationResult
	err       error
	block     bool
	extracted []models.ParsedTransaction
}

func (c *stubClassifier) Name() string  { return "stub" }
func (c *stubClassifier) Enabled() bool { return true }

func (c *stubClassifier) Classify(ctx context.Context, _ ClassificationRequest) (*ClassificationResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.result, c.err
}

func (c *stubClassifier) ExtractTransactions(context.Context, string) ([]models.ParsedTransaction, error) {
	return c.extracted, c.err
}

func (c *stubClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// memReader serves projections straight from a slice.
type memReader struct {
	rows []*models.Transaction
	last models.TransactionFilter
}

func (r *memReader) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.rows {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memReader) Search(_ context.Context, filter models.TransactionFilter) ([]*models.Transaction, int, error) {
	r.last = filter
	rows, _ := r.ListByUser(context.Background(), filter.UserID)
	total := len(rows)
	if filter.Offset >= total {
		return nil, total, nil
	}
	rows = rows[filter.Offset:]
	if len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, total, nil
}
