package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/goyoulink/goyoulink_backend/config"
	"github.com/goyoulink/goyoulink_backend/controllers"
	"github.com/goyoulink/goyoulink_backend/middleware"
	"github.com/goyoulink/goyoulink_backend/repositories"
	"github.com/goyoulink/goyoulink_backend/routes"
	"github.com/goyoulink/goyoulink_backend/services"
	"github.com/goyoulink/goyoulink_backend/utils"
	"github.com/goyoulink/goyoulink_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	settings := config.LoadSettings()

	// Connect to Redis (optional, short-link lookup cache)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Repositories
	affiliateRepo := repositories.NewAffiliateRepository(client)
	orderRepo := repositories.NewOrderRepository(client)
	clickRepo := repositories.NewClickRepository(client)
	payoutRepo := repositories.NewPayoutRepository(client)

	// Dashboard event feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Core services
	ledger := services.NewLedger(affiliateRepo, orderRepo, payoutRepo,
		settings.AllowOverpayout, settings.ReverseOnCancel)
	ledger.SetEventPublisher(wsHub)
	resolver := services.NewAttributionResolver(affiliateRepo)
	clickRecorder := services.NewClickRecorder(affiliateRepo, clickRepo, ledger, redisClient)
	emailService := utils.NewEmailService(settings)

	// Controllers
	webhookController := controllers.NewWebhookController(settings, affiliateRepo, resolver, ledger)
	redirectController := controllers.NewRedirectController(settings, clickRecorder)
	adminController := controllers.NewAdminController(settings, affiliateRepo, orderRepo, payoutRepo, ledger, emailService)
	affiliateController := controllers.NewAffiliateController(settings, affiliateRepo, orderRepo, clickRepo, payoutRepo)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "GoyouLink Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	routes.RegisterWebhookRoutes(e, webhookController)
	routes.RegisterAdminRoutes(e, adminController, wsHub)
	routes.RegisterAffiliateRoutes(e, affiliateController)

	// Registered last so the :code parameter cannot capture API paths
	routes.RegisterRedirectRoutes(e, redirectController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
