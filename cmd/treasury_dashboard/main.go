package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"treasury_dashboard/internal/client"
	"treasury_dashboard/internal/config"
	"treasury_dashboard/internal/repository"
	"treasury_dashboard/internal/restapi"
	"treasury_dashboard/internal/service"
	"treasury_dashboard/internal/utils"
	"treasury_dashboard/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// Initialize logger (using logrus for now as per existing config, but can switch to zap native)
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	// Default level, will be updated by config
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route slog through zap so every package logs to one sink
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	stdLogger := slog.New(slogHandler)
	slog.SetDefault(stdLogger)

	// Load configuration
	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Update log level from config
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Infof("Failed to log to file, using default stdout: %v", err)
		}
	}

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	// Initialize Prometheus metrics
	metrics.MustRegisterMetrics()

	// Initialize upstream clients
	deBankTimeout := time.Duration(cfg.DeBank.RequestTimeoutMillis) * time.Millisecond
	deBankClient := client.NewDeBankClient(cfg.DeBank.BaseURL, cfg.DeBank.AccessKey, deBankTimeout, zapLogger)
	zapLogger.Info("DeBank client initialized")

	duneTimeout := time.Duration(cfg.Dune.RequestTimeoutMillis) * time.Millisecond
	duneClient := client.NewDuneClient(cfg.Dune.BaseURL, cfg.Dune.APIKey, duneTimeout, zapLogger)
	zapLogger.Info("Dune client initialized")

	// Initialize services
	rules := service.NewRuleSet(cfg.Rules)
	snapshotRepo := repository.NewInMemorySnapshotRepository()
	zapLogger.Info("Using InMemorySnapshotRepository")

	deBankConfigured := cfg.DeBank.AccessKey != ""
	if !deBankConfigured {
		zapLogger.Warn("DeBank access key not set; treasury refresh will be unavailable")
	}
	treasurySvc := service.NewTreasuryService(
		deBankClient,
		snapshotRepo,
		rules,
		cfg.Wallets,
		cfg.StaticWallets,
		cfg.DeBank.WalletRatePerSecond,
		cfg.DeBank.WalletRateBurst,
		deBankConfigured,
		zapLogger,
	)
	zapLogger.Info("TreasuryService initialized", zap.Int("wallets", len(cfg.Wallets)))

	duneConfigured := cfg.Dune.APIKey != ""
	if !duneConfigured {
		zapLogger.Warn("Dune API key not set; yield series will be served from synthetic data")
	}
	cacheTTL := time.Duration(cfg.Dune.CacheTTLMinutes) * time.Minute
	duneCache := gocache.New(cacheTTL, 2*cacheTTL)
	yieldSvc := service.NewYieldService(
		duneClient,
		duneCache,
		cfg.Yield,
		cfg.ProtocolStats,
		duneConfigured,
		cfg.Dune.MaxConcurrentQueries,
		zapLogger,
	)
	zapLogger.Info("YieldService initialized", zap.Int("assets", len(cfg.Yield.Queries)))

	// Warm the first snapshot in the background so the API is useful at startup
	if deBankConfigured {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := treasurySvc.Refresh(ctx); err != nil {
				zapLogger.Error("Initial treasury refresh failed", zap.Error(err))
			} else {
				zapLogger.Info("Initial treasury refresh completed")
			}
		}()
	}

	// Initialize Gin router
	router := gin.New()

	// Setup CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Custom logging middleware using zap
	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	// Setup routes
	treasuryHandler := restapi.NewTreasuryHandler(treasurySvc, zapLogger)
	yieldHandler := restapi.NewYieldHandler(yieldSvc, zapLogger)
	restapi.RegisterRoutes(router, treasuryHandler, yieldHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	// Pprof endpoints (for debugging performance issues)
	// Make sure to protect these in a production environment
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
		pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
	}
	zapLogger.Info("Pprof endpoints enabled under /debug/pprof")

	// Start server
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
