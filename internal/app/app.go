package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/dating/internal/config"
	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/middleware"
	"github.com/simp-lee/dating/internal/module/message"
	"github.com/simp-lee/dating/internal/module/user"
	"github.com/simp-lee/dating/internal/pkg"
	"github.com/simp-lee/dating/internal/store/memory"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// repositories groups the storage ports shared by the modules.
type repositories struct {
	users    domain.UserRepository
	messages domain.MessageRepository
}

// migratedModels lists every table the SQL repositories read and write.
var migratedModels = []any{
	&domain.User{},
	&domain.Photo{},
	&domain.Like{},
	&domain.Message{},
}

// New wires an App from cfg: logger, storage, the user and message modules,
// the middleware chain, metrics and routes. Resources opened before a
// failure are released.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	success := false
	defer func() {
		if !success {
			closeLogger(log)
		}
	}()

	db, repos, err := openStorage(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if !success {
			closeDB(db, log.Logger)
		}
	}()

	pages := pageDefaults(cfg.Pagination)
	userSvc := user.NewUserService(repos.users)
	messageSvc := message.NewMessageService(repos.messages, repos.users)
	deps := &RouteDeps{
		Modules: []Module{
			user.NewModule(user.NewUserHandler(userSvc, pages)),
			message.NewModule(message.NewMessageHandler(messageSvc, pages)),
		},
		DB:       db,
		InMemory: db == nil,
	}

	engine, err := newEngine(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		if err := mountMetrics(engine, deps, cfg.Metrics.Path); err != nil {
			return nil, err
		}
	}
	if err := RegisterRoutes(engine, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// openStorage returns the repositories for the configured driver. The
// memory driver has no *gorm.DB.
func openStorage(cfg *config.Config, log *slog.Logger) (*gorm.DB, repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Info("using in-memory store")
		return nil, newMemoryRepositories(), nil
	}

	db, err := config.SetupDatabase(&cfg.Database, log)
	if err != nil {
		return nil, repositories{}, fmt.Errorf("setup database: %w", err)
	}
	if shouldAutoMigrate(cfg) {
		if err := db.AutoMigrate(migratedModels...); err != nil {
			closeDB(db, log)
			return nil, repositories{}, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}
	return db, newSQLRepositories(db), nil
}

// newEngine builds a gin engine with the request middleware chain. Routes
// are added later by RegisterRoutes.
func newEngine(cfg *config.Config, log *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustRequestID,
		}),
		middleware.LoggerWithConfig(log, middleware.LoggerConfig{
			SkipPaths: quietPaths(cfg),
		}),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
	)

	if cfg.Server.Timeout != "" {
		timeout, err := time.ParseDuration(cfg.Server.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid server.timeout %q: %w", cfg.Server.Timeout, err)
		}
		engine.Use(middleware.Timeout(timeout))
	}
	return engine, nil
}

// mountMetrics instruments engine on a private registry and points deps at
// the exposition handler.
func mountMetrics(engine *gin.Engine, deps *RouteDeps, path string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewMetrics(reg, path)
	if err != nil {
		return fmt.Errorf("setup metrics: %w", err)
	}
	engine.Use(metrics.Handler())
	deps.MetricsPath = path
	deps.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return nil
}

func closeDB(db *gorm.DB, log *slog.Logger) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return err
	}
	return nil
}

func closeLogger(l *logger.Logger) {
	if err := l.Close(); err != nil {
		slog.Error("logger close error", slog.Any("error", err))
	}
}

// quietPaths lists the probe and scrape endpoints kept out of request logs.
func quietPaths(cfg *config.Config) []string {
	paths := []string{HealthPath}
	if cfg.Metrics.Enabled {
		paths = append(paths, cfg.Metrics.Path)
	}
	return paths
}

func newSQLRepositories(db *gorm.DB) repositories {
	return repositories{
		users:    user.NewUserRepository(db),
		messages: message.NewMessageRepository(db),
	}
}

func newMemoryRepositories() repositories {
	dataset := memory.NewDataset()
	return repositories{
		users:    memory.NewUserRepository(dataset),
		messages: memory.NewMessageRepository(dataset),
	}
}

func shouldAutoMigrate(cfg *config.Config) bool {
	return cfg.Server.Mode == gin.DebugMode || cfg.Database.Driver == config.DriverSQLite
}

// pageDefaults converts the pagination settings, falling back to the
// built-in sizes for zero values.
func pageDefaults(cfg config.PaginationConfig) pkg.PageDefaults {
	d := pkg.DefaultPageDefaults()
	if cfg.DefaultPageSize > 0 {
		d.PageSize = cfg.DefaultPageSize
	}
	if cfg.MaxPageSize > 0 {
		d.MaxPageSize = cfg.MaxPageSize
	}
	return d
}

func resolveCORSConfig(mode string, cfg config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	if len(cfg.ExposeHeaders) > 0 {
		corsConfig.ExposeHeaders = cfg.ExposeHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if d, err := time.ParseDuration(cfg.MaxAge); err == nil && d > 0 {
		corsConfig.MaxAge = strconv.Itoa(int(d.Seconds()))
	}

	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		return corsConfig
	}

	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the database
// connection when one is open.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		// Graceful shutdown with 5-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil && closeDB(a.db, log) == nil {
		log.Info("database connection closed")
	}

	log.Info("server stopped")
	if a.logger != nil {
		closeLogger(a.logger)
	}

	return runErr
}
