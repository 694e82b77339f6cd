package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/campuskeep/staffdir-backend/api/controllers"
	"github.com/campuskeep/staffdir-backend/api/routes"
	"github.com/campuskeep/staffdir-backend/internal/identity"
	"github.com/campuskeep/staffdir-backend/internal/importer"
	"github.com/campuskeep/staffdir-backend/internal/registrations"
	"github.com/campuskeep/staffdir-backend/internal/staff"
	"github.com/campuskeep/staffdir-backend/internal/uploads"
	"github.com/campuskeep/staffdir-backend/pkg/config"
	"github.com/campuskeep/staffdir-backend/pkg/firebase"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
	"github.com/campuskeep/staffdir-backend/pkg/metrics"
	"github.com/campuskeep/staffdir-backend/pkg/sheets"
	"github.com/campuskeep/staffdir-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "staffdir-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "staffdir-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	clients, err := firebase.NewClients(context.Background(), cfg.GCP, cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap firebase clients", err)
		os.Exit(1)
	}
	defer func() {
		if err := clients.Close(); err != nil {
			logg.Error(context.Background(), "error closing firestore", err)
		}
	}()

	// The registration queue is optional: without a spreadsheet id the
	// registration endpoints report the dependency as unavailable.
	var queue registrations.Queue
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsClient, err := sheets.NewClient(context.Background(), cfg.GCP, cfg.Sheets, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap sheets client", err)
			os.Exit(1)
		}
		queue = sheetsClient
	} else {
		logg.Warn(context.Background(), "no spreadsheet configured, registration queue disabled")
	}

	uploader, err := storage.NewUploader(clients.Bucket, cfg.Storage.Bucket)
	if err != nil {
		logg.Error(context.Background(), "failed to create storage uploader", err)
		os.Exit(1)
	}

	provider, err := identity.NewProvider(clients.Auth)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity provider", err)
		os.Exit(1)
	}

	repo, err := staff.NewRepository(clients.Firestore)
	if err != nil {
		logg.Error(context.Background(), "failed to create staff repository", err)
		os.Exit(1)
	}

	staffService, err := staff.NewService(repo, provider, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	registrationService, err := registrations.NewService(queue, repo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create registration service", err)
		os.Exit(1)
	}

	pipeline, err := importer.NewPipeline(repo, repo, uploader, provider, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create import pipeline", err)
		os.Exit(1)
	}

	uploadService, err := uploads.NewService(cfg.Uploads.Dir, uploader, nil, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}

	pages, err := controllers.NewPages(cfg.Web.TemplatesDir, logg)
	if err != nil {
		logg.Warn(context.Background(), "page templates unavailable, serving API only")
		pages = nil
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting staff directory server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			Verifier:      provider,
			Admins:        repo,
			StaffService:  staffService,
			Registrations: registrationService,
			Importer:      pipeline,
			Uploads:       uploadService,
			Pages:         pages,
			Metrics:       httpMetrics,
			Gatherer:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "server stopped unexpectedly", err)
		os.Exit(1)
	}
}
