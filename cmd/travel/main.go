package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // airport-local times in slim images

	"corptravel/cfg"
	"corptravel/internal/flight"
	"corptravel/internal/prefs"
	"corptravel/pkg/cache"
	"corptravel/pkg/db"
	"corptravel/pkg/flightclient"
	"corptravel/pkg/idgen"
	"corptravel/pkg/logger"
	"corptravel/pkg/ratelimit"

	_ "corptravel/cmd/travel/docs" // swagger docs

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// @title           Corporate Travel Flight API
// @version         1.0
// @description     Flight offer search with caching, filtering and per-client search sessions.
// @BasePath        /
// @schemes         http
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Otel
	// ============
	if config.Otel.Enabled {
		shutdownOtel, err := initOtel(ctx, config, zlogger)
		if err != nil {
			zlogger.Warn("failed to initialize OpenTelemetry, continuing without tracing/metrics", logger.Err(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownOtel(ctx); err != nil {
					zlogger.Error("failed to shutdown OpenTelemetry", logger.Err(err))
				}
			}()
		}
	}

	// ============
	// Cache
	// ============
	backend, err := newCacheBackend(ctx, config)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()
	resultCache := flight.NewResultCache(backend, flight.TTLPolicy{
		FlightSearch:  config.Cache.SearchTTL,
		ReferenceData: config.Cache.ReferenceTTL,
		Offer:         config.Cache.OfferTTL,
	}, zlogger)

	// ============
	// Preferences store
	// ============
	prefsDB, err := db.OpenSQLite(ctx, config.PrefsDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer prefsDB.Close()
	if err := prefsDB.Migrate(prefs.Migrations, prefs.MigrationsDir); err != nil {
		log.Fatal(err)
	}
	prefStore := prefs.NewSQLStore(prefsDB, zlogger)

	// ============
	// External Service
	// ============
	gateway := flightclient.NewDuffelClient(flightclient.Config{
		BaseURL:        config.Duffel.BaseURL,
		AccessToken:    config.Duffel.AccessToken,
		APIVersion:     config.Duffel.APIVersion,
		Timeout:        config.Duffel.Timeout,
		CorporateCodes: config.Duffel.CorporateCodes,
	}, ratelimit.NewKeyed(config.Duffel.RPS, config.Duffel.Burst), zlogger)

	// ============
	// Internal Service
	// ============
	ids, err := idgen.NewSnowflakeGenerator(config.SnowflakeNodeID)
	if err != nil {
		log.Fatal(err)
	}
	searchLimiter := ratelimit.NewSlidingWindow(config.Search.RateLimit, config.Search.RateWindow)

	flightSvc := flight.NewService(gateway, resultCache, searchLimiter, prefStore, ids, zlogger,
		flight.WithDebounce(config.Search.Debounce),
	)
	defer flightSvc.Shutdown()
	flightHandler := flight.NewFlightHandler(flightSvc, zlogger, !config.IsProduction())

	// ============
	// HTTP
	// ============
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if config.Otel.Enabled {
		r.Use(otelgin.Middleware(config.Otel.ServiceName))
	}
	r.Use(TraceLoggerMiddleware(zlogger))
	r.Use(flight.ClientIDMiddleware())
	r.Use(flight.RateLimitMiddleware(ratelimit.NewKeyed(float64(config.Search.HTTPRatePerMin)/60, config.Search.HTTPRatePerMin)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	flightHandler.RegisterRoutes(r)
	initSwagger(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlogger.Info("http server listening", logger.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlogger.Error("http server failed", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlogger.Error("http server shutdown failed", logger.Err(err))
	}
}

func newCacheBackend(ctx context.Context, config *cfg.Config) (cache.Cache, error) {
	if config.Cache.Backend == cfg.CacheBackendRedis {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     config.RedisConfig.Addr(),
			Password: config.RedisConfig.Password,
			Prefix:   "corptravel:",
		})
	}
	return cache.NewMemoryCache(), nil
}

func initSwagger(r *gin.Engine) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		html := `<!DOCTYPE html>
<html>
<head>
    <title>API Documentation</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <script id="api-reference" data-url="/swagger/doc.json"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
		c.String(200, html)
	})
}
