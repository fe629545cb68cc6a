package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/insight-pulse/api"
	"github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/auth"
	authPostgres "github.com/frahmantamala/insight-pulse/internal/auth/postgres"
	"github.com/frahmantamala/insight-pulse/internal/core/events"
	"github.com/frahmantamala/insight-pulse/internal/department"
	departmentPostgres "github.com/frahmantamala/insight-pulse/internal/department/postgres"
	"github.com/frahmantamala/insight-pulse/internal/mailer"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	permissionPostgres "github.com/frahmantamala/insight-pulse/internal/permission/postgres"
	"github.com/frahmantamala/insight-pulse/internal/survey"
	surveyPostgres "github.com/frahmantamala/insight-pulse/internal/survey/postgres"
	"github.com/frahmantamala/insight-pulse/internal/transport"
	"github.com/frahmantamala/insight-pulse/internal/transport/rest"
	"github.com/frahmantamala/insight-pulse/internal/user"
	userPostgres "github.com/frahmantamala/insight-pulse/internal/user/postgres"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

const mailDrainTimeout = 10 * time.Second

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Gorm       *gorm.DB
	Router     *chi.Mux
	EventBus   *events.EventBus
	Dispatcher *mailer.Dispatcher
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// in-flight handlers may still be enqueueing alerts
	deps.EventBus.Wait()
	drainCtx, cancel := context.WithTimeout(context.Background(), mailDrainTimeout)
	if err := deps.Dispatcher.Drain(drainCtx); err != nil {
		deps.Logger.Warn("mail queue not drained, pending alerts dropped", "error", err)
	}
	cancel()
	deps.Dispatcher.Shutdown()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	deptService := department.NewService(departmentPostgres.NewDepartmentRepository(deps.Gorm), lg)
	userService := user.NewService(userPostgres.NewUserRepository(deps.DB), lg)
	permService := permission.NewService(permissionPostgres.NewPermissionRepository(deps.Gorm), deptService, userService, deps.EventBus, lg)
	surveyService := survey.NewService(surveyPostgres.NewSurveyRepository(deps.Gorm), lg)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), deps.Config.Security.BCryptCost, lg)

	opts := rest.Options{AllowedOrigins: deps.Config.Server.AllowedOrigins}
	if deps.Config.Server.ValidateRequests {
		doc, err := api.Load(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load openapi document: %w", err)
		}
		opts.OpenAPI = doc
	}

	return rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:       auth.NewHandler(base, authService),
		Department: department.NewHandler(base, deptService),
		Permission: permission.NewHandler(base, permService),
		Survey:     survey.NewHandler(base, surveyService),
		User:       user.NewHandler(base, userService),
	}, opts, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Database.RequireSource(); err != nil {
		return nil, err
	}
	lg := setupLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	dispatcher := mailer.NewDispatcher(newMailer(config.Mail, lg), mailer.DispatcherConfig{
		MaxWorkers: config.Mail.MaxWorkers,
		QueueSize:  config.Mail.QueueSize,
	}, lg)
	dispatcher.Register(bus)

	return &Dependencies{
		Config:     config,
		Logger:     lg,
		DB:         db,
		Gorm:       gormDB,
		Router:     chi.NewRouter(),
		EventBus:   bus,
		Dispatcher: dispatcher,
	}, nil
}

func newMailer(cfg internal.MailConfig, lg *slog.Logger) mailer.Mailer {
	if cfg.Driver == "sendgrid" {
		return mailer.NewSendGridMailer(mailer.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromName:  cfg.FromName,
			FromEmail: cfg.FromEmail,
		})
	}
	return mailer.NewLogMailer(lg)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see one set of
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
