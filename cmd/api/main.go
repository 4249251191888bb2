package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"perks-dashboard-api/internal/cache"
	"perks-dashboard-api/internal/config"
	"perks-dashboard-api/internal/events"
	"perks-dashboard-api/internal/features"
	"perks-dashboard-api/internal/getproven"
	"perks-dashboard-api/internal/handler"
	"perks-dashboard-api/internal/middleware"
	"perks-dashboard-api/internal/service"
	"perks-dashboard-api/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON config file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize tracing
	if _, err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "perks-dashboard-api",
		Environment: cfg.Tracing.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer tracing.Shutdown(context.Background())

	// A missing API key is fatal here, not a per-request failure.
	catalog, err := getproven.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey)
	if err != nil {
		log.Fatalf("Failed to initialize catalog client: %v", err)
	}

	// Health probe cache
	var store cache.Cache
	if cfg.Cache.Backend == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		store = redisCache
	} else {
		store = cache.NewInMemoryCache()
	}

	// Feature flags
	flags := features.NewManager()
	flags.Register(features.FeatureAdminView, cfg.Features.AdminView, "Expose admin endpoints with unfiltered vendor data")
	flags.Register(features.FeatureHealthCache, cfg.Features.HealthCache, "Cache the upstream health probe")
	flags.Register(features.FeatureEventHooks, cfg.Features.EventHooks, "Emit async diagnostic events")

	// Diagnostic events, logged server-side only
	eventManager := events.NewManager(cfg.Features.EventHooks)
	defer eventManager.Shutdown()
	eventManager.Subscribe(events.EventCatalogDegraded, func(ctx context.Context, e events.Event) error {
		if data, ok := e.Data.(events.CatalogDegradedData); ok {
			log.Printf("event: %s degraded: %s", data.Operation, data.Reason)
		}
		return nil
	})

	svc := service.New(catalog, store, eventManager, flags, service.Options{
		FullPageSize: cfg.Upstream.FullPageSize,
		HealthTTL:    time.Duration(cfg.Cache.HealthTTLSeconds) * time.Second,
	})

	h := handler.NewHandler(svc, flags)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
	defer rateLimiter.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingMiddleware())

	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Security.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.Routes(r)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Upstream: %s", upstreamLabel(cfg.Upstream.BaseURL))
	log.Printf("Rate limit: %d requests per %d seconds (enabled=%v)", cfg.RateLimit.Rate, cfg.RateLimit.Window, cfg.RateLimit.Enabled)

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}

func upstreamLabel(baseURL string) string {
	if baseURL == "" {
		return getproven.DefaultBaseURL
	}
	return baseURL
}
