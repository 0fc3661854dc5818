// Package server
//
// @title Facilite API
// @version 1.0
// @description Hotel booking and food ordering service API
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/auth"
	"github.com/facilite-dev/facilite/internal/config"
	"github.com/facilite-dev/facilite/internal/models"
	"github.com/facilite-dev/facilite/internal/ratelimit"
	"github.com/facilite-dev/facilite/internal/seed"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	db           *gorm.DB
	config       *config.Config
	logger       zerolog.Logger
	validator    *validator.Validate
	asynqClient  *asynq.Client
	loginLimiter ratelimit.Limiter
	version      string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	auth.InitializeJWT(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	// Register custom validators on gin's binding engine so handlers can use
	// them in binding tags
	validate := validator.New()
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validate = engine
	}

	// Phone numbers: optional leading +, 8-15 digits
	phoneRe := regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	if err := validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register phone validator: %w", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	loginLimiter := ratelimit.NewRedisLimiter(
		redis.NewClient(&redis.Options{Addr: cfg.Redis.Address}),
		time.Duration(cfg.Auth.LoginRateWindowSeconds)*time.Second,
		cfg.Auth.LoginRateMax,
	)

	if cfg.SeedFile != "" {
		catalog, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed catalog: %w", err)
		}
		if err := seed.Apply(db, catalog, zlog); err != nil {
			return nil, fmt.Errorf("failed to apply seed catalog: %w", err)
		}
		zlog.Info().Str("seed_file", cfg.SeedFile).Msg("Seed catalog applied")
	}

	server := &Server{
		db:           db,
		config:       cfg,
		logger:       zlog,
		validator:    validate,
		asynqClient:  asynqClient,
		loginLimiter: loginLimiter,
		version:      version,
	}

	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 * time.Second
		busyTimeout     = 5000
		cacheSize       = 10000
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints
	s.router.POST("/auth/register/client", s.registerClient)
	s.router.POST("/auth/login/client", s.loginClient)
	s.router.POST("/auth/login/manager", s.loginManager)

	// Public catalog endpoints (browsing requires no session)
	s.router.GET("/hotels", s.listHotels)
	s.router.GET("/hotels/:id", s.getHotel)
	s.router.GET("/hotels/:id/rooms", s.listRooms)
	s.router.GET("/restaurants", s.listRestaurants)
	s.router.GET("/restaurants/:id", s.getRestaurant)
	s.router.GET("/restaurants/:id/menu", s.listMenu)
	s.router.GET("/nearby", s.nearbyPlaces)
	s.router.GET("/location/distance", s.locationDistance)

	// QR receipts are served as static files
	s.router.Static("/static/qrcodes", s.config.Payments.QRDir)

	// Authenticated routes (JWT required)
	authed := s.router.Group("")
	authed.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		authed.GET("/auth/me", s.getCurrentUser)
		authed.POST("/auth/register/manager",
			RequireRoles(s.logger, access.RoleAdmin), s.registerManager)

		// User management (admin only)
		userRoutes := authed.Group("/users")
		userRoutes.Use(RequireRoles(s.logger, access.RoleAdmin))
		{
			userRoutes.GET("", s.listUsers)
			userRoutes.POST("", s.createUser)
			userRoutes.DELETE("/:id", s.deleteUser)
		}

		// Hotel management
		authed.POST("/hotels",
			RequireRoles(s.logger, access.RoleAdmin), s.createHotel)
		authed.PUT("/hotels/:id",
			RequireRoles(s.logger, access.RoleAdmin, access.RoleHotelManager), s.updateHotel)
		authed.DELETE("/hotels/:id",
			RequireRoles(s.logger, access.RoleAdmin), s.deleteHotel)
		authed.POST("/hotels/:id/rooms",
			RequireRoles(s.logger, access.RoleAdmin, access.RoleHotelManager), s.addRoom)
		authed.GET("/hotels/:id/reservations",
			RequireRoles(s.logger, access.RoleAdmin, access.RoleHotelManager), s.listHotelReservations)

		// Restaurant management
		authed.POST("/restaurants",
			RequireRoles(s.logger, access.RoleAdmin), s.createRestaurant)
		authed.POST("/restaurants/:id/menu",
			RequireRoles(s.logger, access.RoleAdmin, access.RoleRestaurantManager), s.addMenu)
		authed.GET("/restaurants/:id/nearby-orders",
			RequireRoles(s.logger, access.RoleAdmin, access.RoleRestaurantManager), s.nearbyOrders)

		// Reservations
		authed.POST("/reservations", s.createReservation)
		authed.GET("/reservations",
			RequireRoles(s.logger, access.RoleAdmin), s.listReservations)
		authed.GET("/reservations/:id/track", s.trackReservation)
		authed.POST("/reservations/:id/location", s.updateReservationLocation)

		// Orders
		authed.POST("/orders", s.createOrder)
		authed.GET("/orders",
			RequireRoles(s.logger, access.RoleAdmin), s.listOrders)
		authed.GET("/orders/:id/track", s.trackOrder)
		authed.GET("/orders/:id/delivery", s.getOrderDelivery)
		authed.POST("/orders/:id/location", s.updateOrderLocation)

		// Payments
		authed.POST("/payments", s.createPayment)
		authed.GET("/payments",
			RequireRoles(s.logger, access.RoleAdmin), s.listPayments)
		authed.GET("/payments/:id", s.getPayment)
		authed.POST("/payments/validate",
			RequireRoles(s.logger, access.StaffRoles...), s.validatePaymentQR)

		// Deliveries
		authed.POST("/deliveries",
			RequireRoles(s.logger, access.RoleAdmin, access.RoleRestaurantManager), s.assignDelivery)
		authed.GET("/deliveries/:id", s.getDelivery)
		authed.PATCH("/deliveries/:id", s.updateDelivery)
		authed.DELETE("/deliveries/:id",
			RequireRoles(s.logger, access.RoleAdmin), s.deleteDelivery)

		// Current user's own records
		me := authed.Group("/me")
		{
			me.GET("/reservations", s.myReservations)
			me.GET("/orders", s.myOrders)
			me.GET("/payments", s.myPayments)
			me.GET("/deliveries", s.myDeliveries)
		}

		// Commission statistics (admin only)
		stats := authed.Group("/stats")
		stats.Use(RequireRoles(s.logger, access.RoleAdmin))
		{
			stats.GET("/commissions", s.totalCommissions)
			stats.GET("/commissions/monthly", s.monthlyCommissions)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "facilite-api",
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start starts the HTTP server
func (s *Server) Start() error {
	port := ":8080"

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")

	return nil
}
