package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"raffled/internal/config"
	"raffled/internal/draw"
	"raffled/internal/handlers"
	"raffled/internal/middleware"
	"raffled/internal/repositories/mongodb"
	"raffled/internal/services"
	"raffled/pkg/cache"
	"raffled/pkg/database"
	"raffled/pkg/directory"
	"raffled/pkg/logger"
	"raffled/pkg/sms"
	"raffled/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	smsProvider, err := newSMSProvider(cfg.SMS)
	if err != nil {
		log.Fatalf("Failed to initialize SMS provider: %v", err)
	}

	// Repositories
	raffleRepo := mongodb.NewRaffleRepository(db.Database, redisCache, cfg.Raffle.SnapshotCacheTTL)
	ticketRepo := mongodb.NewTicketRepository(db.Database)
	prizeRepo := mongodb.NewPrizeRepository(db.Database)
	winnerRepo := mongodb.NewWinnerRepository(db.Database)

	// Services
	var contactDirectory services.ContactDirectory
	if cfg.Raffle.UserDirectoryURL != "" {
		contactDirectory = directory.NewHTTPDirectory(cfg.Raffle.UserDirectoryURL)
	}

	validationService := services.NewTicketValidationService(raffleRepo, ticketRepo)
	entryService := services.NewEntryService(raffleRepo, ticketRepo, validationService, appLogger)
	notificationService := services.NewNotificationService(winnerRepo, contactDirectory, smsProvider, appLogger)
	claimService := services.NewWinnerClaimService(winnerRepo, prizeRepo, appLogger)

	engine := draw.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())), appLogger)
	lifecycleService := services.NewRaffleLifecycleService(
		raffleRepo, ticketRepo, prizeRepo, winnerRepo,
		engine, redisCache, notificationService,
		cfg.Raffle.DrawLockTTL, appLogger,
	)

	// Handlers
	raffleHandler := handlers.NewRaffleHandler(lifecycleService)
	entryHandler := handlers.NewEntryHandler(entryService, validationService)
	ticketHandler := handlers.NewTicketHandler(entryService)
	winnerHandler := handlers.NewWinnerHandler(claimService, notificationService)

	// Background claim-deadline sweep
	go runClaimSweep(claimService, cfg.Raffle.ClaimSweepInterval, appLogger)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupRaffleRoutes(v1, cfg.Security.JWTSecret, raffleHandler, entryHandler, ticketHandler, winnerHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting server")
	log.Fatal(http.ListenAndServe(addr, router))
}

func newSMSProvider(cfg *config.SMSConfig) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "aws_sns":
		return sms.NewAWSSNSProvider(cfg.AWSSNS.Region)
	default:
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	}
}

func runClaimSweep(claimService services.WinnerClaimService, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		count, err := claimService.ExpireUnclaimed(ctx)
		cancel()

		if err != nil {
			log.WithError(err).Error("Claim expiry sweep failed")
			continue
		}
		if count > 0 {
			log.WithField("expired", count).Info("Expired unclaimed prizes")
		}
	}
}
