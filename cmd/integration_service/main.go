package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetease/golang_services/internal/integration_service/app"
	"github.com/fleetease/golang_services/internal/integration_service/middleware"
	"github.com/fleetease/golang_services/internal/integration_service/payment"
	"github.com/fleetease/golang_services/internal/integration_service/regulatory"
	"github.com/fleetease/golang_services/internal/integration_service/repository/postgres"
	"github.com/fleetease/golang_services/internal/integration_service/tracking"
	transporthttp "github.com/fleetease/golang_services/internal/integration_service/transport/http"
	"github.com/fleetease/golang_services/internal/platform/config"
	"github.com/fleetease/golang_services/internal/platform/database"
	"github.com/fleetease/golang_services/internal/platform/logger"
)

func main() {
	cfg, err := config.Load("./configs", "config.defaults")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Integration Service starting...", "log_level", cfg.LogLevel)

	dbPool, err := database.NewDBPool(context.Background(), cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Successfully connected to PostgreSQL database")

	trackingAdapter := tracking.NewArventoAdapter(appLogger, tracking.Config{
		APIKey:      cfg.ArventoAPIKey,
		CompanyCode: cfg.ArventoCompanyCode,
		BaseURL:     cfg.ArventoAPIURL,
	}, nil)
	paymentAdapter := payment.NewIyzicoAdapter(appLogger, payment.Config{
		APIKey:    cfg.IyzicoAPIKey,
		SecretKey: cfg.IyzicoSecretKey,
		BaseURL:   cfg.IyzicoBaseURL,
	}, nil)
	regulatoryAdapter := regulatory.NewKabisAdapter(appLogger, regulatory.Config{
		APIKey:      cfg.KabisAPIKey,
		CompanyCode: cfg.KabisCompanyCode,
		BaseURL:     cfg.KabisAPIURL,
	}, nil)

	for _, adapter := range []interface {
		GetName() string
		Configured() bool
	}{trackingAdapter, paymentAdapter, regulatoryAdapter} {
		appLogger.Info("Integration adapter initialized", "provider", adapter.GetName(), "configured", adapter.Configured())
	}

	notifRepo := postgres.NewPgNotificationRepository(dbPool, appLogger)
	appService := app.NewIntegrationAppService(trackingAdapter, paymentAdapter, regulatoryAdapter, notifRepo, appLogger)

	trackingHandler := transporthttp.NewTrackingHandler(appService, appLogger)
	paymentHandler := transporthttp.NewPaymentHandler(appService, appLogger)
	regulatoryHandler := transporthttp.NewRegulatoryHandler(appService, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(transporthttp.PrometheusMetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Provider-authenticated and public endpoints.
		paymentHandler.RegisterWebhookRoutes(r)
		regulatoryHandler.RegisterPublicRoutes(r)

		// Backend-authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTAccessSecret, appLogger))
			trackingHandler.RegisterRoutes(r)
			paymentHandler.RegisterRoutes(r)
			regulatoryHandler.RegisterRoutes(r)
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quitChan
	appLogger.Info("Shutdown signal received", "signal", receivedSignal.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	appLogger.Info("Integration Service shut down successfully.")
}
