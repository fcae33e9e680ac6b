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

	"github.com/frahmantamala/migration-tracker/internal"
	"github.com/frahmantamala/migration-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/migration-tracker/internal/auth/postgres"
	"github.com/frahmantamala/migration-tracker/internal/core/events"
	"github.com/frahmantamala/migration-tracker/internal/dynrecord"
	recordPostgres "github.com/frahmantamala/migration-tracker/internal/dynrecord/postgres"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	fielddefPostgres "github.com/frahmantamala/migration-tracker/internal/fielddef/postgres"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
	lookupPostgres "github.com/frahmantamala/migration-tracker/internal/lookup/postgres"
	"github.com/frahmantamala/migration-tracker/internal/transport/rest"
	"github.com/frahmantamala/migration-tracker/internal/transport/swagger"
	"github.com/frahmantamala/migration-tracker/internal/user"
	userPostgres "github.com/frahmantamala/migration-tracker/internal/user/postgres"
	"github.com/frahmantamala/migration-tracker/pkg/logger"

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
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

const openAPISpecPath = "./api/openapi.yml"

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) error {
	if err := swagger.ValidateSpec(context.Background(), openAPISpecPath); err != nil {
		return err
	}

	lg := deps.Logger

	// Auth
	authRepo := authPostgres.NewRepository(deps.GormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, deps.Config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	evaluator := auth.NewEvaluator()
	guard := auth.NewModuleGuard(lg)

	// Schema registry and lookups
	fieldRepo := fielddefPostgres.NewFieldDefinitionRepository(deps.GormDB)
	fieldService := fielddef.NewService(fieldRepo, lg)
	resolver := lookup.NewResolver(lookupPostgres.NewQuerySource(deps.DB), lg)
	fieldHandler := fielddef.NewHandler(fieldService, resolver, evaluator)

	// Dynamic records
	eventBus := events.NewEventBus(lg)
	events.NewAuditLogger(eventBus)
	recordRepo := recordPostgres.NewRecordRepository(deps.GormDB)
	recordService := dynrecord.NewService(recordRepo, fieldService, resolver, evaluator, eventBus, lg)
	recordHandler := dynrecord.NewHandler(recordService)

	// Users and grants
	userService := user.NewService(userPostgres.NewUserRepository(deps.DB), lg)
	userHandler := user.NewHandler(userService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, authHandler, guard, userHandler, fieldHandler, recordHandler, lg)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
