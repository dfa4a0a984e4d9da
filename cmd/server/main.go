package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/pkg/config"
	"chatonline-world/backend/pkg/di"
	"chatonline-world/backend/pkg/logger"
	"chatonline-world/backend/pkg/observability"
	"chatonline-world/backend/pkg/router"
	"chatonline-world/backend/pkg/secrets"
)

const serviceName = "chatonline-world"

func main() {
	// Load configuration (.env first, then the process environment)
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.LogError(err, "Server stopped with an error")
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// run owns every resource of the process; its defers flush them on all paths
func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting application", "env", cfg.Server.Env, "version", os.Getenv("APP_VERSION"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credentials held in Vault take precedence over the environment
	if vaultConfig := secrets.VaultConfigFromEnv(); vaultConfig.Enabled {
		vault, err := secrets.NewVault(vaultConfig)
		if err != nil {
			return fmt.Errorf("initialize vault: %w", err)
		}
		if err := secrets.Resolve(ctx, vault, cfg, log); err != nil {
			log.Warn("Vault unavailable, using credentials from the environment", "error", err.Error())
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var traceOutput io.Writer
	if cfg.Features.TracingEnabled {
		traceOutput = os.Stdout
	}
	telemetry, err := observability.Setup(serviceName, traceOutput)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			log.LogError(err, "Failed to flush telemetry")
		}
	}()

	db, err := config.NewDB(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	container, err := di.New(cfg, db, log, di.Overrides{Metrics: telemetry.Metrics})
	if err != nil {
		return fmt.Errorf("initialize dependency container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.LogError(err, "Failed to release resources")
		}
	}()

	go container.Hub.Run(ctx)
	container.Health.Start(ctx)

	r := router.New(container)
	if cfg.Features.OpenAPISchemaPath != "" {
		if err := r.AddOpenAPIValidation(cfg.Features.OpenAPISchemaPath); err != nil {
			return fmt.Errorf("enable OpenAPI validation: %w", err)
		}
	}
	if err := r.SetupRoutes(telemetry.Handler); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case listenErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	if listenErr != nil {
		return fmt.Errorf("listen: %w", listenErr)
	}
	return nil
}
