package handlers

import (
	"strings"

	"finflow/internal/dto"
	"finflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	insights  *service.InsightService
	logger    *zap.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, insights *service.InsightService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		insights:  insights,
		logger:    logger,
	}
}

// Summary godoc
// @Summary Total debits and credits
// @Tags analytics
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.SummaryResponse
// @Router /api/v1/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	summary, err := h.analytics.GetSummary(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to build summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build summary",
		})
	}

	return c.JSON(dto.NewSummaryResponse(summary))
}

// Categories godoc
// @Summary Spending per category
// @Tags analytics
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.CategorySpendResponse
// @Router /api/v1/analytics/categories [get]
func (h *AnalyticsHandler) Categories(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	spending, err := h.analytics.GetCategorySpending(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to build category spending", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build category spending",
		})
	}

	return c.JSON(dto.NewCategorySpending(spending))
}

// Monthly godoc
// @Summary Monthly spending trend
// @Tags analytics
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.MonthlySpendResponse
// @Router /api/v1/analytics/monthly [get]
func (h *AnalyticsHandler) Monthly(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	trend, err := h.analytics.GetMonthlyTrend(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Failed to build monthly trend", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build monthly trend",
		})
	}

	return c.JSON(dto.NewMonthlyTrend(trend))
}

// Ask godoc
// @Summary Ask a question about your spending
// @Tags insights
// @Accept json
// @Produce json
// @Param request body dto.InsightRequest true "Question"
// @Security Bearer
// @Success 200 {object} dto.InsightResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/insights [post]
func (h *AnalyticsHandler) Ask(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.InsightRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	insight, err := h.insights.Ask(c.UserContext(), userID, req.Question)
	if err != nil {
		h.logger.Error("Failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to answer question",
		})
	}

	return c.JSON(dto.InsightResponse{Kind: string(insight.Kind), Answer: insight.Answer})
}
