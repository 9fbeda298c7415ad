package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-tinapa-shop/internal/event"
	"go-tinapa-shop/internal/handler"
	"go-tinapa-shop/internal/middleware"
	"go-tinapa-shop/internal/model"
	"go-tinapa-shop/internal/ordernumber"
	"go-tinapa-shop/internal/repository"
	"go-tinapa-shop/internal/service"
	"go-tinapa-shop/internal/ws"
	"go-tinapa-shop/pkg/config"
	"go-tinapa-shop/pkg/database"
	"go-tinapa-shop/pkg/jwt"
	"go-tinapa-shop/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load config
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)
	loc := cfg.Location()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// 3. Repositories
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	cartRepo := repository.NewCartRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	attendanceRepo := repository.NewAttendanceRepo(db)
	feedbackRepo := repository.NewFeedbackRepo(db)
	salesRepo := repository.NewSalesRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 4. Seed default privileges, roles, and admin user
	if err := service.SeedDefaults(context.Background(), privilegeRepo, roleRepo, userRepo, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to seed defaults")
	}

	// 5. Order numbers: Redis when configured, the database otherwise
	var numbers ordernumber.Generator = ordernumber.NewSequenceGenerator()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		numbers = ordernumber.NewRedisGenerator(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("order numbers from redis")
	}

	// 6. Events: Kafka when configured
	var publisher event.Publisher = event.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ClientID, 10)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start kafka producer")
		}
		publisher = kp
	}

	// 7. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 8. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	classifier := service.NewClassifier(loc)

	invService := service.NewInventoryService(db, productRepo, categoryRepo, movementRepo, wsHub)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(db, orderRepo, cartRepo, productRepo, movementRepo, numbers, publisher, wsHub, service.OrderConfig{
		RestockOnCancel: cfg.App.RestockOnCancel,
		Location:        loc,
	})
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, classifier, publisher, wsHub, nil)
	dashService := service.NewDashboardService(salesRepo, movementRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	authService := service.NewAuthService(userRepo, roleRepo, tokens)
	userService := service.NewUserService(userRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(invService)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderService, loc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	dashHandler := handler.NewDashboardHandler(dashService, loc)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	// 9. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 10. Routes
	requireAuth := middleware.RequireAuth(tokens, userRepo)
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/change-password", authHandler.ChangePassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	api.Get("/products", invHandler.GetProducts)
	api.Get("/products/:id", invHandler.GetProduct)
	api.Get("/categories", invHandler.GetCategories)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)
	protected.Get("/me", userHandler.Me)

	// Catalogue and stock
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.UpdateProduct)
	protected.Post("/products/:id/stock", middleware.RequirePrivilege(model.PrivStockAdjust), invHandler.AdjustStock)
	protected.Get("/products/:id/stock", middleware.RequirePrivilege(model.PrivStockAdjust), invHandler.GetStockHistory)
	protected.Post("/categories", middleware.RequirePrivilege(model.PrivCategoryManage), invHandler.CreateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), invHandler.DeleteCategory)

	// Cart
	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart", cartHandler.AddItem)
	protected.Put("/cart/:id", cartHandler.UpdateItem)
	protected.Delete("/cart/:id", cartHandler.RemoveItem)

	// Orders
	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.GetOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Patch("/orders/:id/status", orderHandler.UpdateStatus)
	protected.Delete("/orders/:id", middleware.RequirePrivilege(model.PrivOrderDelete), orderHandler.DeleteOrder)

	// Attendance
	protected.Post("/attendance/time-in", middleware.RequirePrivilege(model.PrivAttendanceRecord), attendanceHandler.TimeIn)
	protected.Post("/attendance/time-out", middleware.RequirePrivilege(model.PrivAttendanceRecord), attendanceHandler.TimeOut)
	protected.Get("/attendance", middleware.RequireAnyPrivilege(model.PrivAttendanceRecord, model.PrivAttendanceViewAll), attendanceHandler.GetAttendance)

	// Feedback
	protected.Post("/feedback", feedbackHandler.Submit)
	protected.Get("/feedback", middleware.RequirePrivilege(model.PrivFeedbackView), feedbackHandler.List)

	// Dashboard
	dashboard := protected.Group("/dashboard", middleware.RequirePrivilege(model.PrivDashboardView))
	dashboard.Get("/stats", dashHandler.GetDashboardStats)
	dashboard.Get("/sales", dashHandler.GetSales)
	dashboard.Get("/stock-movement", dashHandler.GetStockMovement)
	dashboard.Get("/top-products", dashHandler.GetTopProducts)

	// User Management
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", handler.UpgradeWS, requireAuth)
	app.Get("/ws", handler.ServeWS(wsHub))

	// 11. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	wsHub.Stop()
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close kafka producer")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
	log.Info().Msg("server exited")
}
