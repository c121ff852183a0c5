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

	"github.com/frahmantamala/workforce-attendance/internal"
	"github.com/frahmantamala/workforce-attendance/internal/attendance"
	"github.com/frahmantamala/workforce-attendance/internal/auth"
	"github.com/frahmantamala/workforce-attendance/internal/core/events"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	permissionPostgres "github.com/frahmantamala/workforce-attendance/internal/permission/postgres"
	timeoffPostgres "github.com/frahmantamala/workforce-attendance/internal/timeoff/postgres"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/workforce-attendance/internal/timesheet/postgres"
	"github.com/frahmantamala/workforce-attendance/internal/transport"
	"github.com/frahmantamala/workforce-attendance/internal/transport/openapi"
	"github.com/frahmantamala/workforce-attendance/internal/transport/rest"
	"github.com/frahmantamala/workforce-attendance/internal/user"
	userPostgres "github.com/frahmantamala/workforce-attendance/internal/user/postgres"
	"github.com/frahmantamala/workforce-attendance/pkg/logger"
	"github.com/frahmantamala/workforce-attendance/pkg/tracing"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
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
	Config          *internal.Config
	DB              *sqlx.DB
	Gorm            *gorm.DB
	Router          *chi.Mux
	Logger          *slog.Logger
	EventBus        *events.EventBus
	ShutdownTracing tracing.ShutdownFunc
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(context.Background(), deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
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
		if err := deps.EventBus.Close(ctx); err != nil {
			deps.Logger.Error("Event bus drain error", "error", err)
		}
		if err := deps.ShutdownTracing(ctx); err != nil {
			deps.Logger.Error("Tracer shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(ctx context.Context, deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger

	loc, err := cfg.Attendance.Location()
	if err != nil {
		return fmt.Errorf("attendance timezone: %w", err)
	}

	catalog, issues, err := permissionPostgres.NewCatalogRepository(deps.DB).LoadCatalog(ctx)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Warn("permission catalog issue", "issue", issue.String())
	}
	resolver := permission.NewResolver(catalog)

	userRepo := userPostgres.NewUserRepository(deps.Gorm)
	timeoffRepo := timeoffPostgres.NewTimeOffRepository(deps.Gorm)
	timesheetRepo := timesheetPostgres.NewTimesheetRepository(deps.Gorm)

	auditUserGrants(ctx, userRepo, catalog, log)

	deps.EventBus.SubscribeAll(events.TimesheetEventTypes, events.LogTimesheetEvents(log))

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokens, cfg.Security.BCryptCost, log)
	userService := user.NewService(userRepo, resolver, loc, log)
	timesheetService := timesheet.NewService(timesheetRepo, userRepo, timeoffRepo, resolver, deps.EventBus, loc, log)
	attendanceService := attendance.NewService(userRepo, timeoffRepo, timesheetRepo, resolver, attendance.NewResolver(loc), cfg.Attendance.RangeLimit(), log)

	base := transport.NewBaseHandler(log)
	handlers := rest.Handlers{
		Auth:       auth.NewHandler(base, authService),
		User:       user.NewHandler(base, userService, loc),
		Attendance: attendance.NewHandler(base, attendanceService, loc),
		Timesheet:  timesheet.NewHandler(base, timesheetService, loc),
	}

	opts := rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
	}
	if cfg.Server.OpenAPIPath != "" {
		doc, err := openapi.Load(ctx, cfg.Server.OpenAPIPath)
		if err != nil {
			return err
		}
		opts.Validator, err = openapi.NewValidator(doc, rest.APIPrefix, log)
		if err != nil {
			return err
		}
	}
	if cfg.Observability.Tracing.Enabled {
		opts.Tracing = tracing.Middleware(cfg.Observability.Tracing.ServiceName)
	}

	rbac := permission.NewRBACAuthorization(resolver, user.ActorFromContext, log)
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, rbac, opts, log)
	return nil
}

// auditUserGrants logs individual grants that point outside the catalog.
func auditUserGrants(ctx context.Context, users user.Repository, catalog *permission.Catalog, log *slog.Logger) {
	list, err := users.List(ctx)
	if err != nil {
		log.Warn("could not audit user grants", "error", err)
		return
	}
	for _, u := range list {
		for _, issue := range permission.ValidateGrants(catalog, "user:"+u.Email, u.Grants) {
			log.Warn("user grant issue", "issue", issue.String())
		}
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.InitWithOptions(logger.Options{
		Env:    config.Observability.Logging.Env,
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})

	tr := config.Observability.Tracing
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      tr.Enabled,
		ServiceName:  tr.ServiceName,
		Endpoint:     tr.Endpoint,
		Insecure:     tr.Insecure,
		SamplingRate: tr.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config:          config,
		Logger:          lg,
		DB:              db,
		Gorm:            gdb,
		Router:          chi.NewRouter(),
		EventBus:        events.NewEventBus(lg),
		ShutdownTracing: shutdownTracing,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
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

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
}
