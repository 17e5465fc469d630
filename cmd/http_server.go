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

	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/auth"
	"github.com/satyapradip/employee-task-management/internal/events"
	"github.com/satyapradip/employee-task-management/internal/notification"
	"github.com/satyapradip/employee-task-management/internal/passwordreset"
	"github.com/satyapradip/employee-task-management/internal/task"
	taskPostgres "github.com/satyapradip/employee-task-management/internal/task/postgres"
	"github.com/satyapradip/employee-task-management/internal/transport/rest"
	"github.com/satyapradip/employee-task-management/internal/user"
	userPostgres "github.com/satyapradip/employee-task-management/internal/user/postgres"
	"github.com/satyapradip/employee-task-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := os.Getenv("APP_ENV")
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// GORM rides the already-open pgx connection pool.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	// Repositories. One user repository backs auth, user management and the
	// password-reset flow.
	userRepo := userPostgres.NewUserRepository(gormDB)
	taskRepo := taskPostgres.NewTaskRepository(gormDB)

	// Notifications
	var mailer notification.Mailer
	if config.Mail.Enabled {
		mailer = notification.NewSMTPMailer(config.Mail, lg)
	} else {
		mailer = notification.NewLogMailer(lg)
	}

	bus := events.NewEventBus(lg)
	notification.NewTaskListener(mailer, lg).Register(bus)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(config.Security.SessionSecret, config.Security.SessionTokenTTL)
	authService := auth.NewService(userRepo, tokenGen, lg, config.Security.BCryptCost, config.Security.PasswordMinLength)
	userService := user.NewService(userRepo, authService, lg, config.Security.PasswordMinLength)
	taskService := task.NewService(taskRepo, userRepo, bus, lg)
	resetService := passwordreset.NewService(userRepo, mailer, authService, authService, lg, config.Security, config.Mail.ClientBaseURL)

	// Handlers
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	taskHandler := task.NewHandler(taskService)
	resetHandler := passwordreset.NewHandler(resetService)
	roles := auth.NewRoleAuthorization(lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authHandler, resetHandler, userHandler, taskHandler, roles, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
