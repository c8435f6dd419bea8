package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsAdapter "github.com/rentalhub/rental-service/internal/adapter/messaging/nats"
	cacheAdapter "github.com/rentalhub/rental-service/internal/adapter/repository/cache"
	mongoRepo "github.com/rentalhub/rental-service/internal/adapter/repository/mongodb"
	"github.com/rentalhub/rental-service/internal/adapter/rest"
	localStorage "github.com/rentalhub/rental-service/internal/adapter/storage/local"
	"github.com/rentalhub/rental-service/internal/config"
	"github.com/rentalhub/rental-service/internal/mailer"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"github.com/rentalhub/rental-service/internal/platform/metrics"
	"github.com/rentalhub/rental-service/internal/platform/tracer"
	"github.com/rentalhub/rental-service/internal/usecase"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const serviceName = "rental-service"

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...", zap.String("service_name", serviceName))

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Configuration loaded",
		zap.String("http_port", cfg.HTTP.Port),
		zap.String("upload_path", cfg.Upload.Path),
		zap.String("upload_public_prefix", cfg.Upload.PublicPrefix),
	)

	tp := tracer.InitTracer(serviceName, cfg.Otel.ExporterEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	mongoOpts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMinPoolSize(cfg.Mongo.MinPoolSize).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout)
	mongoClient, err := mongo.Connect(context.Background(), mongoOpts)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := mongoClient.Ping(ctxPing, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB")
	db := mongoClient.Database(cfg.Mongo.Database)

	var eventPublisher usecase.EventPublisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATS.URL, appLogger, serviceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer natsPublisher.Close()
		eventPublisher = natsPublisher
	} else {
		appLogger.Info("NATS URL not configured, event publishing disabled")
	}

	var listingCache usecase.ListingCache
	if cfg.Redis.Address != "" {
		cache, err := cacheAdapter.NewListingCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.String("address", cfg.Redis.Address), zap.Error(err))
		}
		listingCache = cache
		appLogger.Info("Listing cache initialized", zap.String("address", cfg.Redis.Address))
	} else {
		appLogger.Info("Redis address not configured, listing cache disabled")
	}

	var decisionMailer usecase.DecisionMailer
	if cfg.SMTP.Host != "" {
		decisionMailer = mailer.NewSMTPMailer(cfg.SMTP)
		appLogger.Info("Booking decision mailer initialized", zap.String("smtp_host", cfg.SMTP.Host))
	} else {
		appLogger.Info("SMTP host not configured, booking decision mail disabled")
	}

	imageStorage := localStorage.NewStorage(cfg.Upload.Path, cfg.Upload.PublicPrefix, cfg.Upload.AllowedTypes, appLogger)

	listingRepo, err := mongoRepo.NewListingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize listing repository", zap.Error(err))
	}
	bookingRepo, err := mongoRepo.NewBookingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize booking repository", zap.Error(err))
	}

	catalogUC := usecase.NewCatalogUsecase(listingRepo, imageStorage, listingCache, eventPublisher, appLogger)
	bookingUC := usecase.NewBookingUsecase(bookingRepo, listingRepo, decisionMailer, eventPublisher, appLogger)

	metricsManager := metrics.NewManager("rental_service")
	go func() {
		if err := metrics.StartMetricsServer(cfg.Metrics.Port, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	handler := rest.NewHandler(catalogUC, bookingUC, metricsManager, appLogger)
	router := rest.NewRouter(handler, cfg.Upload.Path, cfg.Upload.PublicPrefix, appLogger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server stopped gracefully")
	}
}
