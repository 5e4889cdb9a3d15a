package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"finflow/internal/api/handlers"
	"finflow/internal/events"
	"finflow/internal/models"
	"finflow/internal/repository"
	"finflow/internal/service"
	"finflow/internal/storage"
	"finflow/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "router-test-secret"

type docRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func (r *docRepo) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *docRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *docRepo) UpdateStatus(_ context.Context, update models.DocumentStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[update.ID]
	if !ok {
		return repository.ErrNotFound
	}
	doc.Status = update.Status
	return nil
}

func (r *docRepo) ListByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, d := range r.docs {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type txRepo struct {
	rows []*models.Transaction
}

func (r *txRepo) CreateBatch(context.Context, []*models.Transaction) error { return nil }

func (r *txRepo) FindByHashes(context.Context, uuid.UUID, []string) ([]*models.Transaction, error) {
	return nil, nil
}

func (r *txRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	for _, tx := range r.rows {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *txRepo) UpdateCategory(ctx context.Context, userID, id uuid.UUID, category models.Category) (*models.Transaction, error) {
	tx, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tx.Category = category
	return tx, nil
}

func (r *txRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.rows {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *txRepo) Stats(context.Context, uuid.UUID) (*models.DuplicateStats, error) {
	return &models.DuplicateStats{Total: len(r.rows), Unique: len(r.rows)}, nil
}

// projections reads straight from the transaction fake.
type projections struct{ *txRepo }

func (p projections) Search(ctx context.Context, f models.TransactionFilter) ([]*models.Transaction, int, error) {
	rows, _ := p.ListByUser(ctx, f.UserID)
	return rows, len(rows), nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []events.TransactionCreated) error { return nil }

type testServer struct {
	app    *fiber.App
	userID uuid.UUID
	token  string
	txs    *txRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	decimal.MarshalJSONWithoutQuotes = true

	log := zap.NewNop()
	userID := uuid.New()
	jwtManager := auth.NewJWTManager(testSecret)
	token, err := jwtManager.GenerateToken(userID.String(), "", time.Hour)
	require.NoError(t, err)

	store, err := storage.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)

	txs := &txRepo{rows: []*models.Transaction{
		{
			ID: uuid.New(), UserID: userID, DocumentID: uuid.New(),
			Date:        time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC),
			Description: "Whole Foods Market", Amount: decimal.RequireFromString("142.30"),
			Direction: models.DirectionDebit, Category: models.CategoryFood,
		},
		{
			ID: uuid.New(), UserID: userID, DocumentID: uuid.New(),
			Date:        time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC),
			Description: "Salary", Amount: decimal.RequireFromString("5000.00"),
			Direction: models.DirectionCredit, Category: models.CategoryOthers,
		},
	}}
	docs := &docRepo{docs: map[uuid.UUID]*models.Document{}}

	categorizer := service.NewCategorizationService(nil, nil, 1, 0, log)
	duplicates := service.NewDuplicateService(txs, log)
	ingestion := service.NewIngestionService(docs, txs, store, nil, categorizer, duplicates, nil, nopPublisher{},
		service.IngestionOptions{QueueSize: 8, MaxFileSize: 64}, log)
	analytics := service.NewAnalyticsService(projections{txs}, log)
	insights := service.NewInsightService(projections{txs}, log)
	transactions := service.NewTransactionService(txs, duplicates, nopPublisher{}, log)

	app := SetupRouter(Handlers{
		Documents:    handlers.NewDocumentHandler(ingestion, log),
		Transactions: handlers.NewTransactionHandler(transactions, analytics, log),
		Analytics:    handlers.NewAnalyticsHandler(analytics, insights, log),
	}, jwtManager, RouterConfig{}, log)

	return &testServer{app: app, userID: userID, token: token, txs: txs}
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp.StatusCode, out
}

func uploadRequest(t *testing.T, fileName string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_UploadAndStatus(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, uploadRequest(t, "May.PDF", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "uploaded", body["status"])

	id, ok := body["documentId"].(string)
	require.True(t, ok)

	code, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id, nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "May.PDF", body["filename"])
	assert.Equal(t, "uploaded", body["status"])

	code, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_UploadRejects(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, uploadRequest(t, "statement.csv", []byte("a,b")))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, uploadRequest(t, "big.pdf", bytes.Repeat([]byte("x"), 65)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestRouter_Summary(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil))
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 142.30, body["totalDebit"], 0.001)
	assert.InDelta(t, 5000.00, body["totalCredit"], 0.001)
	assert.EqualValues(t, 2, body["totalTransactions"])
}

func TestRouter_ListValidation(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?page=1&pageSize=10", nil))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 10, body["pageSize"])

	code, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?direction=sideways", nil))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?category=Groceries", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_Recategorize(t *testing.T) {
	s := newTestServer(t)
	id := s.txs.rows[0].ID.String()

	code, body := s.do(t, jsonRequest(http.MethodPatch, "/api/v1/transactions/"+id+"/category", `{"category":"shopping"}`))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Shopping", body["category"])

	code, _ = s.do(t, jsonRequest(http.MethodPatch, "/api/v1/transactions/"+id+"/category", `{"category":"Groceries"}`))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, jsonRequest(http.MethodPatch, "/api/v1/transactions/"+uuid.NewString()+"/category", `{"category":"Food"}`))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_Insights(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, jsonRequest(http.MethodPost, "/api/v1/insights", `{"question":"Summarize my expenses"}`))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "summary", body["kind"])

	code, _ = s.do(t, jsonRequest(http.MethodPost, "/api/v1/insights", `{"question":"  "}`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_UploadQueueFull(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 8; i++ {
		code, _ := s.do(t, uploadRequest(t, "May.pdf", []byte("%PDF-1.4")))
		require.Equal(t, http.StatusAccepted, code)
	}

	code, body := s.do(t, uploadRequest(t, "June.pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.NotEmpty(t, body["error"])
}
