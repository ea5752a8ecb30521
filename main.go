package main

import (
	"log"
	"time"

	"github.com/SoMApHQ/somapappv1-sub000/app/config"
	"github.com/SoMApHQ/somapappv1-sub000/app/database"
	"github.com/SoMApHQ/somapappv1-sub000/app/routes/auth"
	financeroutes "github.com/SoMApHQ/somapappv1-sub000/app/routes/finance"
	"github.com/SoMApHQ/somapappv1-sub000/app/services"
	"github.com/SoMApHQ/somapappv1-sub000/app/services/finance"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// apiErrorHandler renders every failure as a JSON envelope
func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	// Set global time zone to East Africa Time
	loc, err := time.LoadLocation("Africa/Kampala")
	if err != nil {
		log.Printf("Warning: Failed to load Africa/Kampala location, falling back to UTC+3: %v", err)
		time.Local = time.FixedZone("EAT", 3*60*60)
	} else {
		time.Local = loc
	}
	log.Printf("Application time zone set to: %s", time.Local.String())

	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Finance engine over the document store
	store := database.NewDocumentStore(config.GetDB())
	financeService := finance.NewService(store, config.AnchorYear())

	// Start background scheduler
	services.StartScheduler(financeService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: apiErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Setup auth routes
	auth.SetupAuthRoutes(app)

	// Setup finance routes
	financeroutes.SetupFinanceRoutes(app, financeService)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	// Start server
	log.Println("Server starting on :8080")
	log.Fatal(app.Listen(":8080"))
}
