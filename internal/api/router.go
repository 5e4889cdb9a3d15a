package api

import (
	"time"

	"finflow/docs"
	"finflow/internal/api/handlers"
	"finflow/pkg/auth"
	"finflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Documents    *handlers.DocumentHandler
	Transactions *handlers.TransactionHandler
	Analytics    *handlers.AnalyticsHandler
}

type RouterConfig struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(h Handlers, jwtManager *auth.JWTManager, cfg RouterConfig, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	documents := protected.Group("/documents")
	documents.Post("", h.Documents.UploadDocument)
	documents.Get("", h.Documents.ListDocuments)
	documents.Get("/:id", h.Documents.GetDocument)

	transactions := protected.Group("/transactions")
	transactions.Get("", h.Transactions.ListTransactions)
	transactions.Get("/duplicates", h.Transactions.DuplicateStats)
	transactions.Post("/resync", h.Transactions.Resync)
	transactions.Patch("/:id/category", h.Transactions.Recategorize)

	analytics := protected.Group("/analytics")
	analytics.Get("/summary", h.Analytics.Summary)
	analytics.Get("/categories", h.Analytics.Categories)
	analytics.Get("/monthly", h.Analytics.Monthly)

	protected.Post("/insights", h.Analytics.Ask)

	return app
}
