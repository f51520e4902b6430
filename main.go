package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commerce-service/config"
	"commerce-service/consumers"
	"commerce-service/controllers"
	"commerce-service/database"
	"commerce-service/rabbitmq"
	"commerce-service/repository"
	"commerce-service/services"
	"commerce-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}
	logger := setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Store initialization failed: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	var (
		publisher services.EventPublisher
		rmq       *rabbitmq.RabbitMQ
	)
	if cfg.MessagingEnabled() {
		rmq, err = rabbitmq.NewRabbitMQ(cfg, logger)
		if err != nil {
			logger.Fatalf("RabbitMQ initialization failed: %v", err)
		}
		defer rmq.Close()

		if err := rmq.SetupQueues(); err != nil {
			logger.Fatalf("Failed to setup RabbitMQ queues: %v", err)
		}
		publisher = rmq
	} else {
		logger.Warn("RABBITMQ_URL is empty, order events are disabled")
	}

	catalog := services.NewCatalogService(store, logger)
	orders := services.NewOrderService(store, publisher, logger)
	users := services.NewUserService(store)

	gin.SetMode(gin.ReleaseMode)
	router := controllers.NewRouter(controllers.Dependencies{
		Tokens:   utils.NewTokenValidator(cfg.JWTSecret, cfg.JWTIssuer),
		Catalog:  catalog,
		Orders:   orders,
		Profiles: users,
		Log:      logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Commerce service starting on %s (store: %s)", cfg.HTTPPort, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if rmq != nil {
		consumer := consumers.NewOrderConsumer(rmq.Channel, cfg, orders, logger)
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Commerce service stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("Commerce service shut down gracefully")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*repository.Store, *sql.DB, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Info("Using in-memory store with seed data")
		return repository.NewMemoryStore(database.DefaultFixtures()), nil, nil
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	if cfg.DBSeed {
		seeded, err := database.Seed(ctx, db, database.DefaultFixtures())
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if seeded {
			logger.Info("Database seeded")
		}
	}
	return repository.NewMySQLStore(db, logger), db, nil
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level %q, using info", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
