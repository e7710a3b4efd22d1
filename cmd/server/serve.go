package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/log"
	"blog/internal/mail"
	"blog/internal/metrics"
	"blog/internal/models"
	"blog/internal/server"
	"blog/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := log.NewSugar(cfg.Env, "blog", cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.SecretKey == config.DevSecretKey {
		logger.Warnw("SECRET_KEY not set, signing cookies with the development key")
	}

	m, metricsHandler, err := metrics.Setup("blog")
	if err != nil {
		return fmt.Errorf("failed to setup metrics: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}
	defer conn.Close()
	if err := db.Migrate(conn, cfg.Database.Driver, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := newSessionStore(cfg, conn, logger)
	if err != nil {
		return fmt.Errorf("failed to setup %s session store: %w", cfg.Session.Backend, err)
	}
	defer store.Close()
	if n, err := store.Cleanup(context.Background()); err != nil {
		logger.Warnw("Expired session cleanup failed", "error", err)
	} else if n > 0 {
		logger.Infow("Removed expired sessions", "count", n)
	}

	if !cfg.Mail.MailEnabled() {
		logger.Warnw("Mail relay not configured, contact form submissions will fail")
	}

	srv, err := server.New(cfg, server.Deps{
		Store:          models.NewStore(conn, cfg.Database.Driver),
		Sessions:       session.NewManager(store, session.NewCookies(cfg.SecretKey, cfg.Session.TTL, cfg.IsProd())),
		Mailer:         mail.NewRelay(cfg.Mail, logger),
		Metrics:        m,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("Starting HTTP server", "addr", cfg.HTTPAddr, "env", cfg.Env)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server startup failed: %w", err)
		}
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			httpServer.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	logger.Infow("Server stopped")
	return nil
}

func newSessionStore(cfg *config.Config, conn *sql.DB, logger *zap.SugaredLogger) (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		store, err := session.NewRedisStore(context.Background(), cfg.Session.RedisURL, cfg.Session.TTL)
		if err != nil {
			return nil, err
		}
		logger.Infow("Using redis session store")
		return store, nil
	default:
		return session.NewSQLStore(conn, cfg.Database.Driver, cfg.Session.TTL), nil
	}
}
