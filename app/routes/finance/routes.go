package finance

import (
	"github.com/SoMApHQ/somapappv1-sub000/app/routes/auth"
	"github.com/SoMApHQ/somapappv1-sub000/app/services/finance"

	"github.com/gofiber/fiber/v2"
)

// SetupFinanceRoutes sets up the finance query routes
func SetupFinanceRoutes(app *fiber.App, svc *finance.Service) {
	api := app.Group("/api/finance")
	api.Use(auth.AuthMiddleware)

	api.Get("/totals", func(c *fiber.Ctx) error {
		return GetSchoolTotalsAPI(c, svc)
	})

	api.Get("/balance", func(c *fiber.Ctx) error {
		return GetBalanceAPI(c, svc)
	})

	api.Get("/payments/recent", func(c *fiber.Ctx) error {
		return GetRecentPaymentsAPI(c, svc)
	})

	api.Get("/expenses/total", func(c *fiber.Ctx) error {
		return GetExpenseTotalAPI(c, svc)
	})

	api.Get("/students/:id", func(c *fiber.Ctx) error {
		return GetStudentFinanceAPI(c, svc)
	})

	api.Get("/students/:id/cutoff", func(c *fiber.Ctx) error {
		return GetStudentFinanceAtCutoffAPI(c, svc)
	})

	api.Post("/cache/clear", func(c *fiber.Ctx) error {
		return ClearCachesAPI(c, svc)
	})
}
