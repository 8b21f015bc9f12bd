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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/employee-portal/api"
	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/access"
	accessPostgres "github.com/frahmantamala/employee-portal/internal/access/postgres"
	"github.com/frahmantamala/employee-portal/internal/auth"
	authPostgres "github.com/frahmantamala/employee-portal/internal/auth/postgres"
	"github.com/frahmantamala/employee-portal/internal/broadcast"
	broadcastPostgres "github.com/frahmantamala/employee-portal/internal/broadcast/postgres"
	"github.com/frahmantamala/employee-portal/internal/catalog"
	catalogPostgres "github.com/frahmantamala/employee-portal/internal/catalog/postgres"
	"github.com/frahmantamala/employee-portal/internal/core/events"
	"github.com/frahmantamala/employee-portal/internal/session"
	sessionPostgres "github.com/frahmantamala/employee-portal/internal/session/postgres"
	"github.com/frahmantamala/employee-portal/internal/transport"
	"github.com/frahmantamala/employee-portal/internal/transport/rest"
	"github.com/frahmantamala/employee-portal/internal/user"
	userPostgres "github.com/frahmantamala/employee-portal/internal/user/postgres"
	"github.com/frahmantamala/employee-portal/pkg/logger"
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
	GormDB *gorm.DB
	SQLx   *sqlx.DB
	Redis  *redis.Client
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	if _, err := api.Load(context.Background()); err != nil {
		deps.Logger.Error("openapi document is invalid", "error", err)
		os.Exit(1)
	}

	router := newRouter(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "base_path", deps.Config.Server.BasePath)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

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

	deps.Logger.Info("Server stopped")
}

// newRouter builds every service and handler on top of deps and mounts them.
func newRouter(deps *Dependencies) *chi.Mux {
	cfg := deps.Config
	lg := deps.Logger

	bus := events.NewEventBus(lg)
	historyRepo := sessionPostgres.NewHistoryRepository(deps.GormDB)
	session.NewHistoryRecorder(historyRepo, lg).Register(bus)

	sessionService := session.NewService(
		sessionPostgres.NewSessionRepository(deps.SQLx),
		historyRepo,
		bus,
		cfg.Session.EffectivePageSize(),
		lg,
	)
	authService := auth.NewService(
		authPostgres.NewRepository(deps.GormDB),
		sessionService,
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		lg,
	)
	userService := user.NewService(userPostgres.NewUserRepository(deps.GormDB), cfg.Security.BCryptCost, lg)
	accessService := access.NewService(accessPostgres.NewAccessRepository(deps.GormDB), lg)
	catalogService := catalog.NewService(catalogPostgres.NewStores(deps.GormDB), lg)
	broadcastService := broadcast.NewService(broadcastPostgres.NewBroadcastRepository(deps.GormDB), lg)

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Auth:      auth.NewHandler(base, authService),
		User:      user.NewHandler(base, userService),
		Access:    access.NewHandler(base, accessService),
		Session:   session.NewHandler(base, sessionService),
		Catalog:   catalog.NewHandler(base, catalogService),
		Broadcast: broadcast.NewHandler(base, broadcastService),
	}
	rbac := auth.NewRBACAuthorization(base, auth.NewPermissionChecker())

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.SQLx.DB, handlers, rbac, rest.Options{
		BasePath:         cfg.Server.BasePath,
		AllowedOrigins:   cfg.Server.Origins(),
		ExposeErrors:     !cfg.Server.IsProduction(),
		Redis:            deps.Redis,
		LoginRateLimit:   cfg.Session.LoginRateLimit,
		LoginRateWindow:  cfg.Session.LoginRateWindow,
		LoginBlockPeriod: cfg.Session.LoginBlockPeriod,
	}, lg)
	return router
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Server.Environment,
		logger.WithLevel(config.Logging.Level),
		logger.WithFormat(config.Logging.Format),
	)
	lg := logger.LoggerWrapper()

	sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(sqlxDB)
	if err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		GormDB: gormDB,
		SQLx:   sqlxDB,
		Redis:  initRedis(config.Redis, lg),
		Logger: lg,
	}, nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.SQLx.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

// initDB opens the shared pgx pool used by both sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

// initRedis returns nil when no address is configured; the login limiter is then disabled.
func initRedis(cfg internal.RedisConfig, lg *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		lg.Info("redis not configured, login rate limiting disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
