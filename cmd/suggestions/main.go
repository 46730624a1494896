package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/suggestions"
	"github.com/richxcame/neighborly/internal/weather"
	"github.com/richxcame/neighborly/pkg/cache"
	"github.com/richxcame/neighborly/pkg/common"
	"github.com/richxcame/neighborly/pkg/config"
	"github.com/richxcame/neighborly/pkg/database"
	"github.com/richxcame/neighborly/pkg/errors"
	"github.com/richxcame/neighborly/pkg/eventbus"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/middleware"
	"github.com/richxcame/neighborly/pkg/ratelimit"
	redisClient "github.com/richxcame/neighborly/pkg/redis"
	"github.com/richxcame/neighborly/pkg/resilience"
	"github.com/richxcame/neighborly/pkg/tracing"
	"github.com/richxcame/neighborly/pkg/validation"
	"go.uber.org/zap"
)

const (
	serviceName = "suggestions-service"
	version     = "1.0.0"
)

func main() {
	// Set default port for suggestions service if not set
	if os.Getenv("PORT") == "" {
		os.Setenv("PORT", "8090")
	}
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting suggestions service",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	// Initialize Sentry for error tracking
	sentryConfig := errors.DefaultSentryConfig(cfg.Sentry.DSN, cfg.Server.Environment, serviceName)
	sentryConfig.Release = version
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized successfully")
	}

	// Initialize OpenTelemetry tracer
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(rootCtx, tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: cfg.Tracing.ServiceVersion,
			Environment:    cfg.Server.Environment,
			OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
			SampleRate:     cfg.Tracing.SampleRate,
			Enabled:        true,
		}, logger.Get())
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Failed to shutdown tracer", zap.Error(err))
				}
			}()
			logger.Info("OpenTelemetry tracing initialized successfully")
		}
	}

	pool, err := database.NewPostgresPool(rootCtx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to database")

	// Redis backs the weather and trending caches; without it both are disabled.
	var cacheManager *cache.Manager
	redis, err := redisClient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
	} else {
		defer redis.Close()
		cacheManager = cache.NewManager(redis)
		logger.Info("Connected to Redis")
	}

	tables, err := demand.LoadTables(cfg.Suggestions.DemandTablesFile)
	if err != nil {
		logger.Fatal("Failed to load demand tables", zap.Error(err))
	}

	weatherSvc := weather.NewService(cfg.Weather, cacheManager)
	if cfg.Weather.APIKey == "" && !cfg.Weather.DemoMode {
		logger.Warn("OPENWEATHER_API_KEY not set and demo mode off, weather signal disabled")
	}
	if cfg.Resilience.CircuitBreaker.Enabled {
		cbCfg := cfg.Resilience.CircuitBreaker.SettingsFor("openweathermap")
		weatherBreaker := resilience.NewCircuitBreaker(
			resilience.BuildSettings(fmt.Sprintf("%s-weather", serviceName), cbCfg.IntervalSeconds, cbCfg.TimeoutSeconds, cbCfg.FailureThreshold, cbCfg.SuccessThreshold),
			resilience.GracefulDegradation("openweathermap"),
		)
		weatherSvc.SetCircuitBreaker(weatherBreaker)
		logger.Info("Circuit breaker enabled for weather API")
	}

	store := requests.NewRepository(pool)
	service := suggestions.NewService(
		weatherSvc,
		requests.NewMatcher(store),
		store,
		demand.NewAnalyzer(tables),
		cacheManager,
		suggestions.ConfigFrom(cfg.Suggestions),
	)
	handler := suggestions.NewHandler(service)

	// Request lifecycle events keep the trending cache fresh
	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.Name = serviceName
		bus, err = eventbus.New(rootCtx, busCfg)
		if err != nil {
			logger.Warn("Failed to connect to NATS, trending cache relies on TTL", zap.Error(err))
		} else {
			defer bus.Close()
			if err := suggestions.NewEventListener(cacheManager).Start(rootCtx, bus); err != nil {
				logger.Warn("Failed to subscribe to request events", zap.Error(err))
			} else {
				logger.Info("Subscribed to request lifecycle events")
			}
		}
	}

	if err := validation.RegisterGinRules(); err != nil {
		logger.Fatal("Failed to register validation rules", zap.Error(err))
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.NoRoute(suggestions.NotFound)
	router.Use(middleware.Recovery())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeoutDuration()))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))

	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}

	// Add Sentry error handler (should be near the end of middleware chain)
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	router.GET("/healthz", common.LivenessProbe(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	// Readiness probe with dependency checks
	healthChecks := map[string]common.Check{
		"database": store.Ping,
	}
	if redis != nil {
		healthChecks["redis"] = redis.Ping
	}
	if bus != nil {
		healthChecks["nats"] = func(context.Context) error {
			if !bus.Connected() {
				return fmt.Errorf("nats disconnected")
			}
			return nil
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter middleware.RateLimiter
	if redis != nil && cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(redis.Client, cfg.RateLimit)
		logger.Info("Rate limiting enabled", zap.Int("limit", cfg.RateLimit.Limit), zap.Int("window_seconds", cfg.RateLimit.WindowSeconds))
	}
	handler.RegisterRoutes(router, cfg.JWT.Secret, limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelRoot()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
