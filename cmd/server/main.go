package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/markrc139/christmas-poster-generator/internal/client"
	"github.com/markrc139/christmas-poster-generator/internal/config"
	"github.com/markrc139/christmas-poster-generator/internal/handler"
	"github.com/markrc139/christmas-poster-generator/internal/middleware"
	"github.com/markrc139/christmas-poster-generator/internal/service"
	"github.com/markrc139/christmas-poster-generator/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client.SetBodyLogging(cfg.Server.LogLevel == "debug")

	// Initialize external clients
	falClient := client.NewFalClient(&cfg.Fal)
	if !falClient.IsConfigured() {
		log.Printf("Warning: FAL_KEY not configured, poster generation will fail")
	}

	swapper, err := client.NewFaceSwapper(cfg)
	if err != nil {
		log.Fatalf("Failed to create face swap client: %v", err)
	}
	if !swapper.IsConfigured() {
		log.Printf("Warning: %s face swap not configured, posters will be returned without face swaps", swapper.Name())
	}

	// Initialize validator
	validate := validator.New()

	// Initialize services
	posterService := service.NewPosterService(falClient, cfg.Pipeline.RequirePhoto)
	statusService := service.NewStatusService(falClient, swapper)

	// Initialize handlers
	posterHandler := handler.NewPosterHandler(posterService, validate)
	statusHandler := handler.NewStatusHandler(statusService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.CORS())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Christmas poster generator",
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"fal":      falClient.IsConfigured(),
				"faceswap": swapper.IsConfigured(),
				"provider": swapper.Name(),
			},
		})
	})

	// API routes
	api := app.Group("/api", middleware.MethodNotAllowed())
	api.Post("/generate-poster", posterHandler.Generate)
	api.Post("/check-status", statusHandler.Check)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (face swap provider: %s)", addr, swapper.Name())
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message, nil)
}
