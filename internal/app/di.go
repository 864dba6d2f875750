// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/database"
	fitnessHTTP "github.com/fitsync/fitsync/internal/fitness/http"
	fitnessRemote "github.com/fitsync/fitsync/internal/fitness/remote"
	fitnessRepository "github.com/fitsync/fitsync/internal/fitness/repository"
	fitnessUseCase "github.com/fitsync/fitsync/internal/fitness/usecase"
	"github.com/fitsync/fitsync/internal/http"
	"github.com/fitsync/fitsync/internal/metrics"
	"github.com/fitsync/fitsync/internal/sync/handlers"
	syncHTTP "github.com/fitsync/fitsync/internal/sync/http"
	syncRepository "github.com/fitsync/fitsync/internal/sync/repository"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger   *slog.Logger
	db       *sql.DB
	remoteDB *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	syncMetrics     metrics.SyncMetrics
	businessMetrics metrics.BusinessMetrics

	// Repositories
	eventRepo  syncUseCase.EventRepository
	recordRepo fitnessUseCase.RecordRepository

	// Use Cases and Engine
	eventUseCase  syncUseCase.EventUseCase
	recordUseCase fitnessUseCase.RecordUseCase
	engine        *syncUseCase.SyncEngine

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                 sync.Mutex
	loggerInit         sync.Once
	dbInit             sync.Once
	remoteDBInit       sync.Once
	txManagerInit      sync.Once
	metricsInit        sync.Once
	eventRepoInit      sync.Once
	recordRepoInit     sync.Once
	eventUseCaseInit   sync.Once
	recordUseCaseInit  sync.Once
	engineInit         sync.Once
	httpServerInit     sync.Once
	metricsServerInit  sync.Once
	initErrors         map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the local database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// RemoteDB returns the connection to the remote backing store uploads are
// shipped to.
func (c *Container) RemoteDB() (*sql.DB, error) {
	c.remoteDBInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             "postgres",
			ConnectionString:   c.config.RemoteDBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["remoteDB"] = fmt.Errorf("failed to connect to remote database: %w", err)
			return
		}
		c.remoteDB = db
	})
	if storedErr, exists := c.initErrors["remoteDB"]; exists {
		return nil, storedErr
	}
	return c.remoteDB, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// SyncMetrics returns the sync engine metrics recorder, or nil when metrics
// are disabled.
func (c *Container) SyncMetrics() (metrics.SyncMetrics, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.syncMetrics, nil
}

// BusinessMetrics returns the business operation metrics recorder. A no-op
// implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// EventRepository returns the sync event repository instance.
func (c *Container) EventRepository() (syncUseCase.EventRepository, error) {
	c.eventRepoInit.Do(func() {
		repo, err := c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
			return
		}
		c.eventRepo = repo
	})
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// RecordRepository returns the fitness record repository instance.
func (c *Container) RecordRepository() (fitnessUseCase.RecordRepository, error) {
	c.recordRepoInit.Do(func() {
		repo, err := c.initRecordRepository()
		if err != nil {
			c.initErrors["recordRepo"] = err
			return
		}
		c.recordRepo = repo
	})
	if storedErr, exists := c.initErrors["recordRepo"]; exists {
		return nil, storedErr
	}
	return c.recordRepo, nil
}

// EventUseCase returns the sync event use case instance.
func (c *Container) EventUseCase() (syncUseCase.EventUseCase, error) {
	c.eventUseCaseInit.Do(func() {
		useCase, err := c.initEventUseCase()
		if err != nil {
			c.initErrors["eventUseCase"] = err
			return
		}
		c.eventUseCase = useCase
	})
	if storedErr, exists := c.initErrors["eventUseCase"]; exists {
		return nil, storedErr
	}
	return c.eventUseCase, nil
}

// RecordUseCase returns the fitness record use case instance.
func (c *Container) RecordUseCase() (fitnessUseCase.RecordUseCase, error) {
	c.recordUseCaseInit.Do(func() {
		useCase, err := c.initRecordUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
			return
		}
		c.recordUseCase = useCase
	})
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.recordUseCase, nil
}

// SyncEngine returns the sync engine instance.
func (c *Container) SyncEngine() (*syncUseCase.SyncEngine, error) {
	c.engineInit.Do(func() {
		engine, err := c.initSyncEngine()
		if err != nil {
			c.initErrors["engine"] = err
			return
		}
		c.engine = engine
	})
	if storedErr, exists := c.initErrors["engine"]; exists {
		return nil, storedErr
	}
	return c.engine, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}

		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.engine != nil {
		c.engine.Stop()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.remoteDB != nil {
		if err := c.remoteDB.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("remote database close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the local database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initMetrics creates the metrics provider and recorders once. When metrics
// are disabled the sync recorder stays nil and the business recorder is a
// no-op.
func (c *Container) initMetrics() error {
	c.metricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}

		syncMetrics, err := metrics.NewSyncMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create sync metrics: %w", err)
			return
		}

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}

		c.metricsProvider = provider
		c.syncMetrics = syncMetrics
		c.businessMetrics = businessMetrics
	})

	if storedErr, exists := c.initErrors["metrics"]; exists {
		return storedErr
	}
	return nil
}

// initEventRepository creates the sync event repository for the configured driver.
func (c *Container) initEventRepository() (syncUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite3":
		return syncRepository.NewSQLiteEventRepository(db), nil
	case "postgres":
		return syncRepository.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return syncRepository.NewMySQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRecordRepository creates the fitness record repository. The record
// store is the on-device SQLite database.
func (c *Container) initRecordRepository() (fitnessUseCase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	if c.config.DBDriver != "sqlite3" {
		return nil, fmt.Errorf("fitness records require the sqlite3 driver, got %s", c.config.DBDriver)
	}

	return fitnessRepository.NewSQLiteRecordRepository(db), nil
}

// initEventUseCase creates the event use case with all its dependencies.
func (c *Container) initEventUseCase() (syncUseCase.EventUseCase, error) {
	repo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for event use case: %w", err)
	}

	syncMetrics, err := c.SyncMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync metrics for event use case: %w", err)
	}

	return syncUseCase.NewEventUseCase(
		syncUseCase.EventUseCaseConfig{
			MaxAttempts:    c.config.SyncMaxAttempts,
			StaleThreshold: c.config.SyncStaleThreshold,
		},
		repo,
		c.Logger(),
		syncMetrics,
	), nil
}

// initRecordUseCase creates the record use case with all its dependencies,
// wrapped with business metrics instrumentation.
func (c *Container) initRecordUseCase() (fitnessUseCase.RecordUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for record use case: %w", err)
	}

	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
	}

	eventUseCase, err := c.EventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get event use case for record use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
	}

	useCase := fitnessUseCase.NewRecordUseCase(txManager, repo, eventUseCase, c.Logger())
	return fitnessUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initSyncEngine creates the sync engine with the handler registry wired to
// the local record store and the remote uploader.
func (c *Container) initSyncEngine() (*syncUseCase.SyncEngine, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for sync engine: %w", err)
	}

	recordRepo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for sync engine: %w", err)
	}

	remoteDB, err := c.RemoteDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get remote database for sync engine: %w", err)
	}

	syncMetrics, err := c.SyncMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync metrics for sync engine: %w", err)
	}

	registry := syncUseCase.NewRegistry()
	handlers.RegisterAll(registry, recordRepo, fitnessRemote.NewPostgresUploader(remoteDB))

	engine := syncUseCase.NewSyncEngine(
		syncUseCase.EngineConfig{
			TickInterval:    c.config.SyncTickInterval,
			CleanupInterval: c.config.SyncCleanupInterval,
			BatchSize:       c.config.SyncBatchSize,
			MaxConcurrent:   c.config.SyncMaxConcurrent,
			StaleThreshold:  c.config.SyncStaleThreshold,
		},
		eventRepo,
		registry,
		c.Logger(),
		syncMetrics,
	)

	return engine, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	recordUseCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for http server: %w", err)
	}

	eventUseCase, err := c.EventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get event use case for http server: %w", err)
	}

	engine, err := c.SyncEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync engine for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		RecordHandler:    fitnessHTTP.NewRecordHandler(recordUseCase, logger),
		SyncHandler:      syncHTTP.NewSyncHandler(eventUseCase, engine, logger),
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
	}

	if c.config.RateLimitEnabled {
		routerConfig.RateLimitRPS = c.config.RateLimitRequestsPerSec
		routerConfig.RateLimitBurst = c.config.RateLimitBurst
	}

	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		routerConfig.MetricsMiddleware = metrics.HTTPMetricsMiddleware(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(routerConfig)

	return server, nil
}
