package container

import (
	"context"
	"fmt"
	"time"

	"calcdash/adapters/postgres"
	"calcdash/app"
	"calcdash/internal"
	"calcdash/internal/config"
	"calcdash/internal/errors"
	"calcdash/internal/migration"
	"calcdash/internal/upload"
	"calcdash/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// sqlx only knows the bind style of drivers it was built with
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Stores
	Sections  ports.SectionStore
	ApplyLog  ports.ApplyLog
	TempStore *upload.LocalTempStore

	// Services
	Dashboard *app.DashboardService
	Uploads   *app.UploadService

	cancelCleanup context.CancelFunc
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}, nil
}

// OpenDatabase connects to the configured section store and runs migrations
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to open database")
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY and
		// keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to ping database")
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// Init opens the database and builds the stores and services
func (c *Container) Init(ctx context.Context) error {
	db, err := OpenDatabase(ctx, c.Config.Database)
	if err != nil {
		return err
	}
	return c.InitWithDatabase(db)
}

// InitWithDatabase builds the stores and services on an open, migrated
// database
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	repo := postgres.NewSectionRepository(db)
	c.Sections = repo
	c.ApplyLog = repo

	temp, err := upload.NewLocalTempStore(c.Config.Upload.TempDir, c.Config.Upload.TempTTL, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize temp store: %w", err)
	}
	c.TempStore = temp

	c.Dashboard = app.NewDashboardService(c.Sections, c.ApplyLog, c.Logger)
	c.Uploads = app.NewUploadService(c.TempStore, c.Sections, c.ApplyLog, c.Config.Upload, c.Logger)

	c.Logger.Info("container initialized (%s store, temp dir %s)", c.Config.Database.Driver, c.Config.Upload.TempDir)
	return nil
}

// StartCleanup removes expired temp uploads every interval until Shutdown.
func (c *Container) StartCleanup(interval time.Duration) {
	if c.TempStore == nil || interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelCleanup = cancel
	go c.TempStore.RunCleanup(ctx, interval)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.cancelCleanup != nil {
		c.cancelCleanup()
	}

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
