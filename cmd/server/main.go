package main

import (
	"alcyxob/gymhub/internal/api"
	"alcyxob/gymhub/internal/backup"
	"alcyxob/gymhub/internal/config"
	"alcyxob/gymhub/internal/logger"
	"alcyxob/gymhub/internal/metrics"
	"alcyxob/gymhub/internal/repository"
	"alcyxob/gymhub/internal/service"
	"alcyxob/gymhub/internal/storage"
	"alcyxob/gymhub/internal/store"
	"alcyxob/gymhub/internal/store/mongo"
	"alcyxob/gymhub/internal/store/postgres"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "gymhub"

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logger ---
	zlog, err := logger.New(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Log.Environment,
		ServiceName: serviceName,
	})
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)
	zlog.Info("Starting GymHub server", zap.String("store", cfg.Store.Driver))

	// --- Collection store ---
	collections, closeStore, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("Could not open collection store", zap.Error(err))
	}
	defer closeStore()

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry, serviceName)

	// --- Services ---
	repo := repository.New(collections)
	gymService := service.NewGymService(repo, zlog.Named("service"), service.WithMetrics(recorder))

	// --- Archive & backups ---
	var exporter *backup.Exporter
	if cfg.S3.Enabled() {
		archive, err := storage.NewS3Archive(context.Background(), cfg.S3, zlog.Named("storage"))
		if err != nil {
			zlog.Fatal("Failed to initialize S3 archive", zap.Error(err))
		}
		exporter = backup.NewExporter(collections, archive, cfg.Backup.Prefix, zlog.Named("backup"))
		if cfg.Backup.Enabled && cfg.Backup.Schedule != "" {
			scheduler, err := backup.Schedule(cfg.Backup.Schedule, cfg.Backup.Retain, exporter, zlog.Named("backup"))
			if err != nil {
				zlog.Fatal("Failed to schedule backups", zap.Error(err))
			}
			defer func() { <-scheduler.Stop().Done() }()
		}
	} else {
		zlog.Info("S3 archive not configured, backups disabled")
	}

	// --- Router ---
	if cfg.Log.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, api.RouterDeps{
		JWTSecret: cfg.JWT.Secret,
		Handler:   api.NewGymHandler(gymService, exporter),
		Log:       zlog.Named("http"),
		Metrics:   recorder,
		Gatherer:  registry,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("Server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exiting")
}

// openStore selects the collection store backend named by store.driver and
// returns a function that releases it.
func openStore(cfg config.Config, zlog *zap.Logger) (store.CollectionStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		db := client.Database(cfg.Database.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureCollectionIndexes(ctx, mongo.CollectionsCollection(db)); err != nil {
			zlog.Warn("Could not ensure collection indexes", zap.Error(err))
		}
		zlog.Info("MongoDB connection established", zap.String("database", cfg.Database.Name))

		return mongo.NewMongoCollectionStore(db), func() {
			zlog.Info("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				zlog.Error("Failed to disconnect MongoDB", zap.Error(err))
			}
		}, nil

	case config.DriverPostgres:
		level := gormlogger.Warn
		if cfg.Log.Level == "debug" {
			level = gormlogger.Info
		}
		db, err := postgres.Open(cfg.Postgres.DSN, level)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		zlog.Info("PostgreSQL connection established")
		return postgres.NewCollectionStore(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil

	default:
		zlog.Warn("Using the in-memory store; data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}
