// Package server wires the Tegenaria web application together: it opens the
// database, applies migrations, builds the services and runs the HTTP and
// gRPC health servers until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/config"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tegenaria/internal/server/services"
	"github.com/dmitrijs2005/tegenaria/internal/server/web"

	gs "github.com/dmitrijs2005/tegenaria/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// runner is anything that serves until its context is cancelled.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	web     runner
	health  runner
	signals []os.Signal
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// NewApp builds every component once and hands them to each other
// explicitly. Migrations are applied before the servers are constructed.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, rm, c, logger)
	ss := services.NewSessionService(us, c, logger)
	as := services.NewApartmentService(db, rm)

	ws, err := web.New(web.Options{
		Address:      c.HTTPAddr,
		CookieSecure: c.CookieSecure,
		SecretKey:    []byte(c.SecretKey),
		Users:        us,
		Sessions:     ss,
		Apartments:   as,
		Health:       db,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("web server init error: %w", err)
	}

	app := &App{
		config:  c,
		logger:  logger,
		db:      db,
		web:     ws,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT},
	}

	if c.GRPCAddr != "" {
		app.health = gs.NewGRPCServer(c.GRPCAddr, logger, db)
	}

	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, app.signals...)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// start runs r until ctx is done. A failing server cancels the whole app.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or one of the servers
// fails. The database is closed once every server has stopped.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.web)
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, "grpc", app.health)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
