// Package server initializes and runs the keygate service: configuration
// validation, database setup and migrations, and the background session
// sweeper. The product's transport layer embeds AuthService directly.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/filmood/keygate/internal/logging"
	"github.com/filmood/keygate/internal/server/config"
	"github.com/filmood/keygate/internal/server/repositories/repomanager"
	"github.com/filmood/keygate/internal/server/services"
	"github.com/filmood/keygate/internal/server/sweep"
	"github.com/filmood/keygate/internal/server/token"
)

// App wires together the service's long-lived components.
type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	sweeper     *sweep.Sweeper
}

// NewApp validates the configuration, opens the database, runs migrations,
// and constructs the services. A missing or too-short signing secret aborts
// startup here; it is never a per-request condition.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSON(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	codec := token.NewCodec([]byte(cfg.SecretKey))
	auth := services.NewAuthService(db, m, codec, logger, cfg)
	sweeper := sweep.NewSweeper(db, m, cfg.SweepInterval, logger)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		authService: auth,
		sweeper:     sweeper,
	}, nil
}

// AuthService exposes the authentication service for embedding transports.
func (app *App) AuthService() *services.AuthService {
	return app.authService
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the background sweeper and blocks until the context is
// cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting keygate", "sweep_interval", app.config.SweepInterval.String())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "keygate stopped")
}
