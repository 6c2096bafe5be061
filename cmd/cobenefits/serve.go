package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/cobenefits/internal/handlers"
	"github.com/stwalsh4118/cobenefits/internal/middleware"
)

const (
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Long: `Starts the HTTP API. The dataset is loaded once at startup; if the
load fails the server keeps running and every data endpoint answers
503 DATASET_UNAVAILABLE.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting co-benefits API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"data_source": cfg.Data.Source,
	})

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Warm the store so the first request does not pay for the load.
	if err := a.service.Ready(ctx); err != nil {
		log.Error("Dataset failed to load; data endpoints will answer 503", err, nil)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> RateLimit
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	var pinger handlers.Pinger
	if a.db != nil {
		pinger = a.db
	}
	healthHandler := handlers.NewHealthHandler(a.service.Ready, pinger, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	dashboardHandler := handlers.NewDashboardHandler(a.service)
	chartHandler := handlers.NewChartHandler(a.service)

	v1 := router.Group("/api/v1", middleware.RequireDataset(a.service.Ready))
	{
		v1.GET("/filters", dashboardHandler.Filters)

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", dashboardHandler.Dashboard)
			dashboard.GET("/kpis", dashboardHandler.KPIs)
			dashboard.GET("/trend", dashboardHandler.Trend)
			dashboard.GET("/ranking", dashboardHandler.Ranking)
			dashboard.GET("/correlation", dashboardHandler.Correlation)
			dashboard.GET("/scatter", dashboardHandler.Scatter)
			dashboard.GET("/head-to-head", dashboardHandler.HeadToHead)
			dashboard.GET("/breakdown", dashboardHandler.Breakdown)
			dashboard.GET("/comparison", dashboardHandler.Comparison)
			dashboard.GET("/insight", dashboardHandler.Insight)
		}

		v1.GET("/charts/:chart", chartHandler.Chart)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed to start", err, nil)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
		return err
	}

	log.Info("Server exited", nil)
	return nil
}
