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

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/audit"
	"github.com/frahmantamala/lead-rotation/internal/auth"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
	"github.com/frahmantamala/lead-rotation/internal/lead"
	"github.com/frahmantamala/lead-rotation/internal/notification"
	"github.com/frahmantamala/lead-rotation/internal/rotation"
	"github.com/frahmantamala/lead-rotation/internal/storage"
	"github.com/frahmantamala/lead-rotation/internal/storage/gormstore"
	"github.com/frahmantamala/lead-rotation/internal/transport/rest"
	"github.com/frahmantamala/lead-rotation/internal/user"
	"github.com/frahmantamala/lead-rotation/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
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
	Store  storage.Store
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

	logger.Init(config.Logging.Env, config.Logging.Level)
	log := logger.LoggerWrapper()

	store, err := initStore(config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bus := events.NewEventBus(log)

	auditService := audit.NewService(store, log)
	rotationService := rotation.NewService(store, auditService, bus, log)
	leadService := lead.NewService(store, auditService, bus, log)
	userService := user.NewService(store, rotationService, log, config.Security.BCryptCost)

	tokens := auth.NewJWTTokenGenerator(config.Security.SessionSecret, config.Security.SessionTTL)
	authService := auth.NewService(userService, rotationService, auditService, bus, tokens, log)

	notificationService := notification.NewService(store, log)
	dispatcher := notification.NewDispatcher(notificationService, notification.SMTPSender{}, log)
	dispatcher.Register(bus)

	secureCookies := config.Logging.Env == "production"
	authHandler := auth.NewHandler(authService, config.Security.SessionTTL, secureCookies)
	rotationHandler := rotation.NewHandler(rotationService)
	streamHandler := rotation.NewStreamHandler(rotationService, config.Stream.PollInterval, config.Stream.HeartbeatInterval)
	auditHandler := audit.NewHandler(auditService)
	leadHandler := lead.NewHandler(leadService)
	userHandler := user.NewHandler(userService, auditService)
	notificationHandler := notification.NewHandler(notificationService, dispatcher)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, store, authHandler, authService,
		rotationHandler, streamHandler, auditHandler, leadHandler,
		userHandler, notificationHandler, log)

	return &Dependencies{
		Config: config,
		Store:  store,
		Router: router,
		Logger: log,
	}, nil
}

// initStore selects the record-store backend by driver.
func initStore(cfg internal.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemory(), nil
	case "postgres", "sqlite":
		db, err := openGorm(cfg)
		if err != nil {
			return nil, err
		}
		store := gormstore.NewStore(db)
		// postgres gets its schema from goose migrations
		if cfg.Driver != "postgres" {
			if err := store.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openGorm(cfg internal.StorageConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.Driver == "postgres" {
		dialector = postgres.Open(cfg.Source)
	} else {
		dialector = sqlite.Open(cfg.Source)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
