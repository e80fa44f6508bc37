package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	appmodules "plinth/app"
	"plinth/app/jobs"
	"plinth/app/posts"
	"plinth/core/config"
	"plinth/core/database"
	"plinth/core/dispatcher"
	"plinth/core/email"
	"plinth/core/emitter"
	"plinth/core/kernel"
	"plinth/core/logger"
	"plinth/core/registry"
	"plinth/core/router"
	"plinth/core/router/middleware"
	"plinth/core/scheduler"
	"plinth/core/storage"
)

// App wires the kernel and infrastructure together and runs the HTTP server.
type App struct {
	config      *config.Config
	db          *database.Database
	router      *router.Router
	logger      logger.Logger
	emitter     *emitter.Emitter
	dispatcher  *dispatcher.Dispatcher
	storage     *storage.ActiveStorage
	emailSender email.Sender
	manager     *kernel.Manager
	scheduler   *scheduler.CronScheduler
}

// New creates a new application instance
func New() *App {
	return &App{}
}

// Start initializes and starts the application
func (app *App) Start() error {
	app.loadEnvironment()
	app.initConfig()

	if err := app.initLogger(); err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	if err := app.initDatabase(); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	if err := app.initInfrastructure(); err != nil {
		return fmt.Errorf("infrastructure initialization failed: %w", err)
	}

	app.initRouter()

	if err := app.bootModules(); err != nil {
		return err
	}
	if err := app.startScheduler(); err != nil {
		return err
	}

	app.setupSystemRoutes()

	return app.run()
}

// loadEnvironment loads environment variables; a missing .env file is fine.
func (app *App) loadEnvironment() {
	_ = godotenv.Load()
}

// initConfig initializes configuration
func (app *App) initConfig() {
	app.config = config.NewConfig()
}

// initLogger initializes the logger
func (app *App) initLogger() error {
	log, err := logger.NewLogger(logger.Config{
		Environment: app.config.Env,
		LogPath:     "logs",
		Level:       "debug",
	})
	if err != nil {
		return err
	}
	app.logger = log
	return nil
}

// initDatabase initializes the database connection
func (app *App) initDatabase() error {
	db, err := database.InitDB(app.config)
	if err != nil {
		return err
	}
	app.db = db
	app.logger.Info("database connected", logger.String("driver", app.config.DBDriver))
	return nil
}

// initInfrastructure initializes the shared kernel collaborators and storage.
func (app *App) initInfrastructure() error {
	app.emitter = emitter.New(emitter.WithLogger(app.logger))
	app.dispatcher = dispatcher.New(dispatcher.WithLogger(app.logger))

	activeStorage, err := storage.NewActiveStorage(app.db.DB, storage.Config{
		Provider:  app.config.StorageProvider,
		Path:      app.config.StoragePath,
		BaseURL:   app.config.StorageBaseURL,
		AccessKey: app.config.StorageAccessKey,
		SecretKey: app.config.StorageSecretKey,
		Endpoint:  app.config.StorageEndpoint,
		Bucket:    app.config.StorageBucket,
		Region:    app.config.StorageRegion,
	})
	if err != nil {
		return err
	}
	app.storage = activeStorage

	// Email is optional; modules treat a nil sender as disabled.
	sender, err := email.NewSender(app.config)
	if err != nil {
		app.logger.Info("email sending disabled", logger.String("reason", err.Error()))
	} else {
		app.emailSender = sender
	}

	return nil
}

// initRouter initializes the router with middleware
func (app *App) initRouter() {
	app.router = router.New()

	middleware.ApplyConfigurableMiddleware(app.router, &app.config.Middleware, app.logger)

	// Request logging, skipping the paths config excludes.
	app.router.Use(func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			path := c.Request.URL.Path
			if !app.config.Middleware.IsLoggingRequired(path) {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			app.logger.Info("request",
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.Int("status", c.Writer.Status()),
				logger.Duration("duration", time.Since(start)),
				logger.String("ip", c.ClientIP()))
			return err
		}
	})

	app.router.Static("/storage", "./storage")
}

// bootModules runs the two-phase module lifecycle and mounts module routes.
func (app *App) bootModules() error {
	app.manager = kernel.NewManager(app.logger, registry.New(), app.emitter, app.dispatcher)

	deps := kernel.Dependencies{
		DB:          app.db.DB,
		Router:      app.router.Group("/api"),
		Logger:      app.logger,
		Emitter:     app.emitter,
		Dispatcher:  app.dispatcher,
		Storage:     app.storage,
		EmailSender: app.emailSender,
		Config:      app.config,
	}

	if err := app.manager.RegisterAll(appmodules.Modules(deps)); err != nil {
		return fmt.Errorf("module registration failed: %w", err)
	}
	if err := app.manager.InitializeAll(); err != nil {
		return fmt.Errorf("module initialization failed: %w", err)
	}
	if err := app.manager.BootAll(); err != nil {
		return fmt.Errorf("module boot failed: %w", err)
	}

	app.manager.SetupRoutes(app.router.Group("/api"))

	app.logger.Info("modules booted",
		logger.Strings("order", app.manager.Order()))
	return nil
}

// startScheduler registers and starts recurring jobs.
func (app *App) startScheduler() error {
	postService, err := app.manager.Registry().ResolvePublic(posts.ServiceName)
	if err != nil {
		return fmt.Errorf("scheduler setup failed: %w", err)
	}

	cronScheduler, err := jobs.SetupScheduler(postService.(*posts.PostService), app.logger)
	if err != nil {
		return fmt.Errorf("scheduler setup failed: %w", err)
	}
	cronScheduler.Start()
	app.scheduler = cronScheduler
	return nil
}

// setupSystemRoutes sets up basic system routes
func (app *App) setupSystemRoutes() {
	app.router.GET("/health", func(c *router.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"version": app.config.Version,
			"modules": app.manager.Order(),
		})
	})
}

// run starts the HTTP server
func (app *App) run() error {
	port := app.config.ServerPort
	app.logger.Info("server starting", logger.String("port", port))

	if err := app.router.Run(port); err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			return fmt.Errorf("port %s is already in use", port)
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop shuts down background work.
func (app *App) Stop() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
}

func main() {
	app := New()
	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "application failed to start: %v\n", err)
		os.Exit(1)
	}
}
