package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/ZertGraf/user-directory/internal/api"
	"github.com/ZertGraf/user-directory/internal/api/handler"
	"github.com/ZertGraf/user-directory/internal/pkg/config"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/internal/pkg/postgres"
	"github.com/ZertGraf/user-directory/internal/repository"
	"github.com/ZertGraf/user-directory/internal/service"
)

type Application struct {
	Config      *config.Config
	Logger      *logger.Logger
	SearchScope service.SearchScope

	// set only when the fetch journal is enabled
	Postgres *postgres.Connection
	Migrator *postgres.Migrator

	Journal     repository.FetchJournal
	UserRepo    repository.UserRepository
	UserService *service.UserService
	Directory   *service.Directory

	UserHandler *handler.UserHandler
	PageHandler *handler.PageHandler

	HTTPServer *api.HTTPServer
}

type options struct {
	logOutput io.Writer
	override  func(*config.Config)
}

type Option func(*options)

// WithLogOutput sends logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithOverrides lets a caller adjust the loaded config, e.g. from command line flags.
func WithOverrides(fn func(*config.Config)) Option {
	return func(o *options) { o.override = fn }
}

func New(opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.override != nil {
		o.override(cfg)
	}

	log, err := logger.New(&logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: cfg.LogAddSource,
		Output:    o.logOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	scope, err := service.ParseSearchScope(cfg.SearchScope)
	if err != nil {
		return nil, fmt.Errorf("invalid search scope: %w", err)
	}

	app := &Application{
		Config:      cfg,
		Logger:      log,
		SearchScope: scope,
	}

	if cfg.JournalEnabled {
		pg, err := postgres.New(log, &postgres.Config{
			Host:              cfg.DatabaseHost,
			Port:              cfg.DatabasePort,
			Username:          cfg.DatabaseUser,
			Password:          cfg.DatabasePassword,
			Database:          cfg.DatabaseName,
			Schema:            cfg.DatabaseSchema,
			SSLMode:           cfg.DatabaseSSLMode,
			MaxConns:          cfg.DatabaseMaxConns,
			MinConns:          cfg.DatabaseMinConns,
			MaxConnLifetime:   cfg.DatabaseMaxConnLifetime,
			MaxConnIdleTime:   cfg.DatabaseMaxConnIdleTime,
			HealthCheckPeriod: cfg.DatabaseHealthCheckPeriod,
			ConnectTimeout:    cfg.DatabaseConnectTimeout,
			AcquireTimeout:    cfg.DatabaseAcquireTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		app.Postgres = pg
	}

	return app, nil
}

// InitCore establishes the journal and the upstream client. Both front ends
// need it; only the server goes on to Init.
func (app *Application) InitCore(ctx context.Context) error {
	if app.Postgres != nil {
		if err := app.Postgres.Connect(ctx); err != nil {
			return fmt.Errorf("postgres connection failed: %w", err)
		}

		app.Migrator = postgres.NewMigrator(app.Postgres.Pool(), &postgres.MigrationConfig{
			Timeout:   app.Config.DatabaseMigrationTimeout,
			TableName: app.Config.DatabaseMigrationTable,
			Enabled:   app.Config.DatabaseMigrationEnabled,
		}, app.Logger)

		if err := app.Migrator.RunMigrations(ctx); err != nil {
			return fmt.Errorf("database migrations failed: %w", err)
		}

		app.Journal = repository.NewFetchLogRepo(app.Postgres.Pool(), app.Logger)
	} else {
		app.Logger.Info("fetch journal disabled")
		app.Journal = repository.DiscardJournal{}
	}

	userRepo, err := repository.NewUserRepo(&repository.ClientConfig{
		BaseURL: app.Config.UsersAPIBaseURL,
		Timeout: app.Config.UsersAPITimeout,
	}, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create users client: %w", err)
	}

	app.UserRepo = userRepo
	app.UserService = service.NewUserService(app.UserRepo, app.Journal, app.Logger)
	return nil
}

func (app *Application) Init(ctx context.Context) error {
	app.Logger.Info("initializing application")

	if err := app.InitCore(ctx); err != nil {
		return err
	}

	app.Directory = service.NewDirectory(app.UserService, app.Logger)
	app.Directory.Start(ctx)

	app.UserHandler = handler.NewUserHandler(app.Directory, app.UserService, app.SearchScope, app.Logger)

	pageHandler, err := handler.NewPageHandler(app.Directory, app.UserService, app.SearchScope, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create page handler: %w", err)
	}
	app.PageHandler = pageHandler

	serverConfig := &api.ServerConfig{
		Host:         app.Config.ServerHost,
		Port:         app.Config.ServerPort,
		ReadTimeout:  app.Config.ServerReadTimeout,
		WriteTimeout: app.Config.ServerWriteTimeout,
		IdleTimeout:  app.Config.ServerIdleTimeout,
	}

	app.HTTPServer = api.NewHTTPServer(
		serverConfig,
		app.UserHandler,
		app.PageHandler,
		app,
		app.Logger,
	)

	if err := app.HTTPServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	app.Logger.Info("application initialized successfully",
		"users_api", app.Config.UsersAPIBaseURL,
		"search_scope", app.SearchScope)
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("shutting down application")

	if app.HTTPServer != nil {
		if err := app.HTTPServer.Stop(ctx); err != nil {
			app.Logger.Error("error stopping http server", "error", err)
		}
	}

	if app.Directory != nil {
		app.Directory.Close()
	}

	if app.Postgres != nil {
		app.Postgres.Close()
	}

	app.Logger.Info("application shutdown completed")
	return nil
}

// Health is ready once the user collection has loaded. A failed load never
// recovers within the process, so it stays unhealthy until restarted.
func (app *Application) Health(ctx context.Context) error {
	if app.Directory == nil {
		return fmt.Errorf("directory not initialized")
	}
	if status := app.Directory.Snapshot().Status; status != service.StatusSuccess {
		return fmt.Errorf("directory is %s", status)
	}

	if app.Postgres != nil {
		if err := app.Postgres.Health(ctx); err != nil {
			return fmt.Errorf("postgres health check failed: %w", err)
		}
		if err := app.Migrator.Health(ctx); err != nil {
			return fmt.Errorf("migrator health check failed: %w", err)
		}
	}
	return nil
}
