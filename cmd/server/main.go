package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/internal/config"
	"github.com/diewo77/go-orcamentos/internal/db"
	"github.com/diewo77/go-orcamentos/internal/logger"
	"github.com/diewo77/go-orcamentos/internal/metrics"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/diewo77/go-orcamentos/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// shutdownGrace bounds Shutdown when no timeout is configured.
const shutdownGrace = 10 * time.Second

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	purgeImagesFlag = flag.Bool("purge-expired-images", false, "Delete expired staged item images and exit")
)

func main() {
	flag.Parse()

	// A missing .env file is fine; the environment wins anyway.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Environment: cfg.App.Environment, ServiceName: cfg.Log.ServiceName})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	conn, err := db.Connect(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(conn, cfg.Database); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations completed")
		return nil
	}
	if err := db.Migrate(conn, cfg.Database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	seedOpts := db.SeedOptions{ArchitectCommissionDefault: cfg.App.ArchitectCommissionDefault}
	if *seedOnlyFlag {
		if err := db.Seed(ctx, conn, seedOpts); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seeding completed")
		return nil
	}
	if cfg.Database.Seed {
		if err := db.Seed(ctx, conn, seedOpts); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	m := metrics.New("orcamentos")
	files := storage.NewLocalStore(cfg.Storage.MediaRoot)

	if *purgeImagesFlag {
		n, err := services.NewImageService(conn, files, log, m).PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge images: %w", err)
		}
		log.Info("expired images purged", zap.Int("count", n))
		return nil
	}

	if cfg.Auth.SessionSecret != "" {
		auth.SetSecret(cfg.Auth.SessionSecret)
	}
	staff := services.NewStaffService(conn, cfg.Auth.DiscountTokenTTL)
	auth.SetUserVerifier(staff.UserExists)

	app := NewApp(cfg, conn, files, log, m)
	handler := http.Handler(app)
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
		log.Info("shutdown signal received")
	}

	grace := cfg.Server.ShutdownTimeout
	if grace <= 0 {
		grace = shutdownGrace
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
