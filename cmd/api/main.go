package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/componentstate"
	"github.com/Ramsey-B/fern/internal/repositories/contract"
	"github.com/Ramsey-B/fern/internal/repositories/eventaudit"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/ingestion"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/middleware"
	contractroutes "github.com/Ramsey-B/fern/pkg/routes/contract"
	eventroutes "github.com/Ramsey-B/fern/pkg/routes/event"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/timeline"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, flush, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = flush()
	}()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := tracing.Init(ctx, tracing.Config{
			ServiceName: cfg.AppName,
			Environment: cfg.Environment,
			OTLP: &exporters.OTLPConfig{
				Endpoint: cfg.TracingOTLPEndpoint,
				Protocol: cfg.TracingOTLPProtocol,
				Insecure: cfg.TracingOTLPInsecure,
				Timeout:  10 * time.Second,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)
	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db := database.NewDatabaseInstance(sqlxDB, logger)
	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
	defer db.Close()

	contractRepo := contract.NewRepository(db, logger)
	stateRepo := componentstate.NewRepository(db, logger)
	auditRepo := eventaudit.NewRepository(db, logger)

	var emitter ingestion.DecisionEmitter
	var producer *kafka.Producer
	if cfg.KafkaProducerEnabled {
		producerConfig := kafka.DefaultProducerConfig()
		producerConfig.Brokers = cfg.KafkaBrokers
		producerConfig.Topic = cfg.KafkaOutputTopic
		producerConfig.BatchSize = cfg.KafkaBatchSize
		producerConfig.BatchTimeout = time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond
		producerConfig.RequiredAcks = cfg.KafkaRequiredAcks
		producerConfig.Compression = cfg.KafkaCompression

		producer, err = kafka.NewProducer(producerConfig, logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		emitter = events.NewEmitter(producer, logger)
	}

	processor := ingestion.NewProcessor(db, contractRepo, stateRepo, auditRepo, emitter, logger, ingestion.Options{
		AuditEnabled: cfg.EventAuditEnabled,
	})
	timelineService := timeline.NewService(contractRepo, stateRepo, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(echomiddleware.Recover())

	checker := health.NewChecker(db, version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("")
	contractroutes.NewHandler(contractRepo, auditRepo, timelineService, logger).RegisterRoutes(api)
	eventroutes.NewHandler(processor, logger).RegisterRoutes(api)

	manager := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	manager.AddDependency(&startup.Func{
		Name: "migrations",
		StartFunc: func(ctx context.Context) error {
			driver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
			if err != nil {
				return fmt.Errorf("failed to create migration driver: %w", err)
			}
			migrationService := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
			})
			return migrationService.Migrate(cfg.DatabaseName, driver)
		},
	})

	if cfg.KafkaConsumerEnabled {
		consumerConfig := kafka.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.KafkaBrokers
		consumerConfig.Topic = cfg.KafkaInputTopic
		consumerConfig.GroupID = cfg.KafkaConsumerGroup

		consumer, err := kafka.NewConsumer(consumerConfig, logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka consumer: %w", err)
		}

		manager.AddDependency(&startup.Func{
			Name: "kafka-consumer",
			Deps: []string{"migrations"},
			StartFunc: func(ctx context.Context) error {
				return consumer.Start(ctx, ingestion.NewBusHandler(processor, logger))
			},
			StopFunc: func(ctx context.Context) error {
				return consumer.Stop()
			},
		})
	}

	manager.AddDependency(&startup.Func{
		Name: "http-server",
		Deps: []string{"migrations"},
		StartFunc: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
					logger.WithError(err).Info("HTTP server stopped")
				}
			}()
			checker.SetReady(true)
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			checker.SetReady(false)
			return e.Shutdown(ctx)
		},
	})

	if err := manager.Start(ctx); err != nil {
		return err
	}
	logger.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := manager.Stop(shutdownCtx); err != nil {
		return err
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Error("Failed to close kafka producer")
		}
	}

	return nil
}
