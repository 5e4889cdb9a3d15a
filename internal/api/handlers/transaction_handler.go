package handlers

import (
	"errors"

	"finflow/internal/dto"
	"finflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactions *service.TransactionService
	analytics    *service.AnalyticsService
	logger       *zap.Logger
}

func NewTransactionHandler(transactions *service.TransactionService, analytics *service.AnalyticsService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		analytics:    analytics,
		logger:       logger,
	}
}

// ListTransactions godoc
// @Summary Search transactions
// @Tags transactions
// @Produce json
// @Param search query string false "Matches description or merchant"
// @Param category query string false "Category"
// @Param direction query string false "debit or credit"
// @Param dateFrom query string false "First day, YYYY-MM-DD"
// @Param dateTo query string false "Last day, YYYY-MM-DD"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Security Bearer
// @Success 200 {object} dto.TransactionListResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	q := service.ListQuery{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Direction: c.Query("direction"),
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("pageSize", 20),
	}
	if v := c.Query("dateFrom"); v != "" {
		q.DateFrom = &v
	}
	if v := c.Query("dateTo"); v != "" {
		q.DateTo = &v
	}

	page, err := h.analytics.List(c.UserContext(), userID, q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) || errors.Is(err, service.ErrInvalidQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.Error("Failed to list transactions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list transactions",
		})
	}

	return c.JSON(dto.NewTransactionList(page.Items, page.Total, page.Page, page.PageSize))
}

// Recategorize godoc
// @Summary Change a transaction's category
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.RecategorizeRequest true "New category"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id}/category [patch]
func (h *TransactionHandler) Recategorize(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	var req dto.RecategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.transactions.Recategorize(c.UserContext(), userID, id, req.Category)
	switch {
	case errors.Is(err, service.ErrInvalidCategory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	case err != nil:
		h.logger.Error("Failed to recategorize transaction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update transaction",
		})
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

// DuplicateStats godoc
// @Summary Duplicate statistics
// @Tags transactions
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.DuplicateStatsResponse
// @Router /api/v1/transactions/duplicates [get]
func (h *TransactionHandler) DuplicateStats(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	stats, err := h.transactions.DuplicateStats(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to load duplicate stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load duplicate stats",
		})
	}

	return c.JSON(dto.DuplicateStatsResponse{
		Total:      stats.Total,
		Unique:     stats.Unique,
		Duplicates: stats.Duplicates,
	})
}

// Resync godoc
// @Summary Re-publish all transactions
// @Description Replays the user's records so read models catch up.
// @Tags transactions
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ResyncResponse
// @Router /api/v1/transactions/resync [post]
func (h *TransactionHandler) Resync(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	n, err := h.transactions.Resync(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to resync transactions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resync transactions",
		})
	}

	return c.JSON(dto.ResyncResponse{Published: n})
}
