package core

import (
	"database/sql"
	"fmt"

	"github.com/vrsandeep/homebase/internal/assets"
	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/db"
	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/jobs"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI. It implements jobs.JobContext.
type App struct {
	config     *config.Config
	db         *sql.DB
	log        logger.Logger
	bus        *events.Bus
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	Version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level})
	if err != nil {
		return nil, err
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Info("Core application setup complete.", logger.String("database", cfg.Database.Path))
	return NewWith(cfg, database, log, version), nil
}

// NewWith assembles an App around an already migrated database. Tests use
// it with an in-memory database.
func NewWith(cfg *config.Config, database *sql.DB, log logger.Logger, version string) *App {
	if log == nil {
		log = logger.NewNop()
	}
	app := &App{
		config:  cfg,
		db:      database,
		log:     log,
		bus:     events.NewBus(log),
		wsHub:   websocket.NewHub(log),
		Version: version,
	}
	go app.wsHub.Run()
	app.wsHub.Forward(app.bus)

	app.jobManager = jobs.NewManager(app)
	jobs.RegisterJobs(app.jobManager)
	return app
}

func (a *App) Config() *config.Config       { return a.config }
func (a *App) DB() *sql.DB                  { return a.db }
func (a *App) Logger() logger.Logger        { return a.log }
func (a *App) Bus() *events.Bus             { return a.bus }
func (a *App) WsHub() *websocket.Hub        { return a.wsHub }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	a.wsHub.Stop()
	if a.db != nil {
		a.db.Close()
	}
	a.log.Sync()
}
