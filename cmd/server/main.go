package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/wanderlog/backend/internal/catalog"
	"github.com/wanderlog/backend/internal/config"
	"github.com/wanderlog/backend/internal/database"
	"github.com/wanderlog/backend/internal/handlers"
	"github.com/wanderlog/backend/internal/middleware"
	"github.com/wanderlog/backend/internal/services"
	"github.com/wanderlog/backend/internal/storage"
	"github.com/wanderlog/backend/pkg/logger"
	"github.com/wanderlog/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.NewDiskStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("upload storage initialization failed: %v", err)
	}

	sweeper := services.NewSweeper(db, store, cfg.Uploads.SweepInterval, cfg.Uploads.Retention)
	sweeper.Start()

	directionsClient := services.NewDirectionsClient(cfg.Directions)
	hotelCatalog := catalog.Default()

	authHandler := handlers.NewAuthHandler(db)
	usersHandler := handlers.NewUsersHandler(db, store)
	postsHandler := handlers.NewPostsHandler(db, store)
	hotelsHandler := handlers.NewHotelsHandler(hotelCatalog)
	directionsHandler := handlers.NewDirectionsHandler(directionsClient)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	userRoutes := app.Group("/users")
	userRoutes.Get("/", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.List)
	userRoutes.Patch("/:id/role", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.UpdateRole)
	userRoutes.Post("/profile-image", authMiddleware.RequireAuth, usersHandler.UploadProfileImage)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Put("/:id/update", authMiddleware.RequireAuth, usersHandler.Update)

	api := app.Group("/api")
	api.Get("/hotels", hotelsHandler.List)
	api.Get("/hotels/location/:location", hotelsHandler.ByLocation)

	blogRoutes := app.Group("/blogs")
	blogRoutes.Post("/create", postsHandler.Create)
	blogRoutes.Get("/", postsHandler.ListApproved)
	blogRoutes.Get("/pending", authMiddleware.RequireAuth, middleware.AdminOnly, postsHandler.ListPending)
	blogRoutes.Patch("/approve/:id", authMiddleware.RequireAuth, middleware.AdminOnly, postsHandler.Approve)
	blogRoutes.Patch("/reject/:id", authMiddleware.RequireAuth, middleware.AdminOnly, postsHandler.Reject)
	blogRoutes.Get("/image/:id", postsHandler.Image)

	app.Post("/get-route", directionsHandler.GetRoute)

	app.Static(storage.WebPrefix, store.Root())

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":           cfg.Server.Port,
		"uploads_dir":    store.Root(),
		"sweep_interval": cfg.Uploads.SweepInterval.String(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		sweeper.Stop()
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
