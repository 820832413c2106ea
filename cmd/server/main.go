package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
	"github.com/rlaxodnjs199/natours-api/internal/config"
	"github.com/rlaxodnjs199/natours-api/internal/database"
	"github.com/rlaxodnjs199/natours-api/internal/handlers"
	"github.com/rlaxodnjs199/natours-api/internal/mailer"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize database
	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Disconnect()

	var mail mailer.Service = mailer.DevMailer{}
	switch {
	case cfg.MailerSendAPIKey != "":
		mail = mailer.NewMailerSend(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.SMTPFrom)
	case cfg.SMTPHost != "":
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	}
	handlers.Init(cfg, mail)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    10 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	if !cfg.IsProduction() {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE",
	}))

	setupRoutes(app, cfg)

	log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.Env)
	log.Fatal(app.Listen(":" + cfg.Port))
}

func setupRoutes(app *fiber.App, cfg *config.Config) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))
	v1 := api.Group("/v1")

	// Tour routes
	tours := v1.Group("/tours")
	tours.Get("/top-5-cheap", handlers.AliasTopTours, handlers.GetAllTours)
	tours.Get("/tour-stats", handlers.GetTourStats)
	tours.Get("/monthly-plan/:year", handlers.Protect, handlers.RestrictTo("admin", "lead-guide", "guide"), handlers.GetMonthlyPlan)
	tours.Get("/tours-within/:distance/center/:latlng/unit/:unit", handlers.GetToursWithin)
	tours.Get("/distances/:latlng/unit/:unit", handlers.GetDistances)
	tours.Get("/", handlers.GetAllTours)
	tours.Post("/", handlers.Protect, handlers.RestrictTo("admin", "lead-guide"), handlers.CreateTour)
	tours.Get("/:id", handlers.GetTour)
	tours.Patch("/:id", handlers.Protect, handlers.RestrictTo("admin", "lead-guide"), handlers.UpdateTour)
	tours.Delete("/:id", handlers.Protect, handlers.RestrictTo("admin", "lead-guide"), handlers.DeleteTour)

	// Nested review routes, gated the same as the flat /reviews group
	tours.Get("/:tourId/reviews", handlers.Protect, handlers.GetAllReviews)
	tours.Post("/:tourId/reviews", handlers.Protect, handlers.RestrictTo("user"), handlers.CreateReview)

	// User routes
	users := v1.Group("/users")
	users.Post("/signup", handlers.Signup)
	users.Post("/login", handlers.Login)
	users.Post("/forgotPassword", handlers.ForgotPassword)
	users.Patch("/resetPassword/:token", handlers.ResetPassword)
	users.Patch("/updateMyPassword", handlers.Protect, handlers.UpdatePassword)
	users.Get("/", handlers.Protect, handlers.RestrictTo("admin"), handlers.GetAllUsers)
	users.Post("/", handlers.Protect, handlers.RestrictTo("admin"), handlers.CreateUser)
	users.Get("/:id", handlers.Protect, handlers.RestrictTo("admin"), handlers.GetUser)
	users.Patch("/:id", handlers.Protect, handlers.RestrictTo("admin"), handlers.UpdateUser)
	users.Delete("/:id", handlers.Protect, handlers.RestrictTo("admin"), handlers.DeleteUser)

	// Review routes
	reviews := v1.Group("/reviews", handlers.Protect)
	reviews.Get("/", handlers.GetAllReviews)
	reviews.Get("/:id", handlers.GetReview)
	reviews.Patch("/:id", handlers.RestrictTo("user", "admin"), handlers.UpdateReview)
	reviews.Delete("/:id", handlers.RestrictTo("user", "admin"), handlers.DeleteReview)

	// Unmatched routes fall through to the error translator
	app.Use(func(c *fiber.Ctx) error {
		return apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", c.OriginalURL()))
	})
}
