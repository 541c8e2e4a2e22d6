package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "statsdash/api/swagger" // swagger docs
	"statsdash/internal/config"
	"statsdash/internal/handler"
	"statsdash/internal/middleware"
	"statsdash/internal/repository"
	"statsdash/internal/service"
	"statsdash/pkg/logger"
)

// @title           Payments & Withdrawals Stats Dashboard API
// @version         1.0
// @description     Derives a payments and withdrawals dashboard from per-token statistics.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey SessionCookie
// @in header
// @name X-Dashboard-Session
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout))
	gin.SetMode(cfg.GinMode)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Set up dependencies (Repository -> Service -> Handler)
	statsRepo := repository.NewStatsRepository(cfg.StatsEndpoint, cfg.StatsTimeout)
	sessionRepo := repository.NewSessionRepository()
	metrics := service.NewMetricsCollector(registry)
	dashboardService := service.NewDashboardService(statsRepo, sessionRepo, metrics, cfg.StrictValidation)

	cookies := middleware.NewSessionCookies(cfg.SessionSecret, cfg.SecureCookies)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, cookies)
	pageHandler := handler.NewPageHandler(dashboardService, cookies)

	tmpl, err := handler.LoadTemplates()
	if err != nil {
		logger.Fatalf("Failed to parse page templates: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware("/health", "/metrics"))
	router.SetHTMLTemplate(tmpl)

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowOrigin
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.SessionHeaderName}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	pageHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go dashboardService.RunJanitor(ctx, cfg.SessionSweep, cfg.SessionTTL)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logger.Fields{
			"port":     cfg.Port,
			"endpoint": cfg.StatsEndpoint,
			"strict":   cfg.StrictValidation,
		}).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// in-flight submissions are bounded by the stats client timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.StatsTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}
