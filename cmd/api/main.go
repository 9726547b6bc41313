package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/01moynul/relique/internal/ai"
	"github.com/01moynul/relique/internal/config"
	"github.com/01moynul/relique/internal/database"
	"github.com/01moynul/relique/internal/email"
	"github.com/01moynul/relique/internal/events"
	"github.com/01moynul/relique/internal/handlers"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/obs"
	"github.com/01moynul/relique/internal/routes"
	"github.com/01moynul/relique/internal/store"
	"github.com/01moynul/relique/internal/worker"
	"github.com/gin-gonic/gin"
)

// devJWTSecret is only used when APP_ENV=development and JWT_SECRET is unset.
const devJWTSecret = "relique-development-secret"

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg := config.Load()
	logger := obs.NewLogger(cfg.IsDevelopment())
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Main Database Connection (Read/Write) ---
	db, dialect, err := database.Open(cfg.DBDriver, dsnFor(cfg.DBDriver, cfg.DBDSNPrimary))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db, dialect); err != nil {
		return err
	}
	version, _ := database.SchemaVersion(db)
	logger.Info("database ready", "driver", string(dialect), "schema_version", version)

	// 2. --- Read-Only Connection (AI assistant) ---
	if cfg.DBDSNReadOnly == cfg.DBDSNPrimary {
		logger.Warn("DB_DSN_READONLY is not set, the assistant queries the primary database with full privileges")
	}
	dbReadOnly, _, err := database.Open(cfg.DBDriver, dsnFor(cfg.DBDriver, cfg.DBDSNReadOnly))
	if err != nil {
		return err
	}
	defer dbReadOnly.Close()

	st := store.New(db, dialect)
	if err := bootstrapAdmin(ctx, st, cfg, logger); err != nil {
		return err
	}

	// 3. --- Event stream ---
	publisher := events.Multi{events.LogPublisher{Logger: logger}}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = append(publisher, events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger))
		logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("closing event publisher", "error", err)
		}
	}()

	// 4. --- AI Service (optional) ---
	var assistant handlers.Assistant
	if cfg.GeminiAPIKey != "" {
		svc, err := ai.NewService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, dbReadOnly, string(dialect), logger)
		if err != nil {
			return err
		}
		defer svc.Close()
		assistant = svc
	} else {
		logger.Warn("GEMINI_API_KEY is not set, the admin assistant is disabled")
	}

	// --- Application Setup ---
	app := handlers.New(st, cfg, publisher, email.LogSender{Logger: logger}, assistant, logger)

	// --- 5. Background Workers ---
	pruner := &worker.AuditPruner{
		Store:    st,
		Keep:     cfg.AuditKeep,
		Interval: cfg.AuditPruneInterval,
		Logger:   logger,
	}
	go pruner.Run(ctx)

	// --- Start Server ---
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.SetupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting Relique API server", "addr", cfg.HTTPAddr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// --- Graceful Shutdown ---
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// dsnFor adds the connection pragmas to a bare SQLite file path.
func dsnFor(driver, dsn string) string {
	if driver == string(database.SQLite) && !strings.HasPrefix(dsn, "file:") {
		return database.SQLiteDSN(dsn)
	}
	return dsn
}

// bootstrapAdmin creates the first administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD unless that account already exists.
func bootstrapAdmin(ctx context.Context, st *store.Store, cfg config.Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	_, err := st.GetUserByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	var password models.Password
	if err := password.Set(cfg.AdminPassword); err != nil {
		return err
	}
	admin := &models.User{
		Email:        cfg.AdminEmail,
		PasswordHash: password.Hash,
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := st.CreateUser(ctx, admin); err != nil && !errors.Is(err, store.ErrConflict) {
		return err
	}
	logger.Info("bootstrapped admin account", "email", admin.Email)
	return nil
}
