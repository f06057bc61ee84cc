package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hemolink/bloodbank-backend/api/routes"
	"github.com/hemolink/bloodbank-backend/internal/auth"
	"github.com/hemolink/bloodbank-backend/internal/dashboard"
	"github.com/hemolink/bloodbank-backend/internal/donors"
	"github.com/hemolink/bloodbank-backend/internal/inventory"
	"github.com/hemolink/bloodbank-backend/internal/matching"
	"github.com/hemolink/bloodbank-backend/internal/patients"
	"github.com/hemolink/bloodbank-backend/internal/requests"
	"github.com/hemolink/bloodbank-backend/pkg/auth/session"
	"github.com/hemolink/bloodbank-backend/pkg/config"
	"github.com/hemolink/bloodbank-backend/pkg/db"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/metrics"
	"github.com/hemolink/bloodbank-backend/pkg/migrate"
	"github.com/hemolink/bloodbank-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	decisionMetrics := metrics.NewDecisionMetrics(registry)

	gormDB := dbClient.DB()
	donorRepo := donors.NewRepository(gormDB)
	patientRepo := patients.NewRepository(gormDB)
	requestRepo := requests.NewRepository(gormDB)
	inventoryRepo := inventory.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		DonorRepo:      donorRepo,
		PatientRepo:    patientRepo,
		AdminRepo:      auth.NewAdminRepository(gormDB),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	donorService, err := donors.NewService(donorRepo, dbClient, donors.NewRequestCleaner(), cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create donor service", err)
		os.Exit(1)
	}

	patientService, err := patients.NewService(patientRepo, dbClient, patients.NewRequestCleaner(), cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create patient service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo, logg, decisionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	requestService, err := requests.NewService(requestRepo, dbClient, requests.NewDonorReader(), requests.NewStockLedger(), logg, decisionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create request service", err)
		os.Exit(1)
	}

	matchingService, err := matching.NewService(requestRepo, donorRepo, logg, decisionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create matching service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(gormDB), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		PromGateway: registry,
	}, routes.Services{
		Auth:      authService,
		Donors:    donorService,
		Patients:  patientService,
		Inventory: inventoryService,
		Requests:  requestService,
		Matching:  matchingService,
		Dashboard: dashboardService,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
