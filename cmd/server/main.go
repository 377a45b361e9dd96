package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"
	"github.com/tendant/simple-site/pkg/simplesite/api"
	"github.com/tendant/simple-site/pkg/simplesite/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc, cleanup, err := cfg.BuildService(ctx)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	signer := cfg.BuildSigner()
	credentials := cfg.Credentials()
	if !credentials.Configured() {
		slog.Warn("Admin credentials not configured; admin login is disabled")
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	siteHandler := api.NewSiteHandler(svc)
	adminHandler := api.NewAdminHandler(svc, signer, credentials)
	api.Register(server.R, siteHandler, adminHandler)

	// Operator endpoints for deploy scripts, authenticated by API key
	// rather than the admin session
	if cfg.APIKeySHA256 != "" {
		apiKeyMiddleware, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
			APIKeys: map[string]string{
				"ops": cfg.APIKeySHA256,
			},
		})
		if err != nil {
			slog.Error("Failed initialize API Key middleware", "err", err)
			return
		}
		server.R.Route("/api/v1/ops", func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			r.Post("/seed", adminHandler.Seed)
		})
	}

	slog.Info("Site server configured",
		"environment", cfg.Environment,
		"database", cfg.DatabaseType,
		"storage", cfg.StorageBackend,
	)

	server.Run()
}
