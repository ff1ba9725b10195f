// Package server wires the token request services together and runs them:
// the gRPC endpoint, the metrics endpoint and the periodic garbage collector.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/config"
	gs "github.com/dmitrijs2005/carmeet/internal/server/grpc"
	"github.com/dmitrijs2005/carmeet/internal/server/mailer"
	"github.com/dmitrijs2005/carmeet/internal/server/metrics"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/tokenrequests"
	"github.com/dmitrijs2005/carmeet/internal/server/security"
	"github.com/dmitrijs2005/carmeet/internal/server/services"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/google/uuid"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	clock      timex.Clock
	db         *sql.DB
	metrics    *metrics.Metrics
	cleaner    *services.TokenCleaner
	tokens     *services.TokenHelper[uuid.UUID]
	activation *services.ActivationService
}

const sqlitePrefix = "sqlite:"

// OpenStore opens the database named by dsn, runs the schema migrations and
// returns the matching repository manager. A "sqlite:" prefix selects SQLite
// (the rest is the file path, opened with foreign keys on); anything else is
// handed to the pgx driver. Migration output goes to logger.
func OpenStore(ctx context.Context, dsn string, clock timex.Clock, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	driver, rm := "pgx", repomanager.NewPostgresRepositoryManager(clock, logger)
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		driver, dsn, rm = "sqlite", repomanager.SQLiteDSN(path), repomanager.NewSQLiteRepositoryManager(clock, logger)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}
	return db, rm, nil
}

// NewApp builds the application. With a DSN the token requests live in
// PostgreSQL or SQLite (migrated on start) and the activation flow is
// available; without one they are kept in memory.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	clock := timex.SystemClock{}
	m := metrics.New()

	app := &App{config: c, logger: logger, clock: clock, metrics: m}

	var repo tokenrequests.Repository[uuid.UUID]
	var rm repomanager.RepositoryManager

	if c.DatabaseDSN != "" {
		db, manager, err := OpenStore(ctx, c.DatabaseDSN, clock, logger)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db, rm = db, manager
		repo = rm.TokenRequests(db)
	} else {
		logger.Warn(ctx, "no database configured, token requests are kept in memory")
		repo = tokenrequests.NewMemoryRepository[uuid.UUID](clock, uuid.UUID.String)
	}

	app.cleaner = services.NewTokenCleaner(repo, c.GCEnabled, logger, m)
	app.tokens = services.NewTokenHelper[uuid.UUID](
		security.NewTokenGenerator(c.SigningKey, nil),
		app.cleaner,
		repo,
		clock,
		c.TokenRequestLifetime,
		c.RequestThrottleTime,
		logger,
		m,
	)

	if app.db != nil {
		app.activation = services.NewActivationService(app.db, rm, app.tokens, newMailer(c, logger), clock, c, logger)
	}

	return app, nil
}

func newMailer(c *config.Config, logger logging.Logger) mailer.Mailer {
	if c.SMTPHost == "" {
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSMTPMailer(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var activation gs.ActivationService
	if app.activation != nil {
		activation = app.activation
	}

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.tokens, app.cleaner, activation,
		app.config.SecretKey, app.clock)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())

	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runGarbageCollector removes expired token requests every interval until
// ctx is canceled.
func (app *App) runGarbageCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.cleaner.HandleGarbageCollection(ctx, false); err != nil {
				app.logger.Error(ctx, "periodic garbage collection failed", "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	if app.cleaner.Enabled() && app.config.GCInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runGarbageCollector(ctx, app.config.GCInterval)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}

	app.logger.Info(context.Background(), "App stopped")
}
