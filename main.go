package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"download-request-service/cache"
	"download-request-service/config"
	"download-request-service/email"
	"download-request-service/handler"
	appLogger "download-request-service/logger"
	"download-request-service/middleware"
	redisClient "download-request-service/redis"
	"download-request-service/resolver"
	"download-request-service/store"
	"download-request-service/token"
	"download-request-service/workflow"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize logger
	appLogger.Initialize()

	// Load configuration
	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	// Initialize Redis client
	rdb := redisClient.NewClient(cfg.Redis)

	// Initialize cache (if enabled)
	var cacheClient *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		cacheClient, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	// Secure download URLs are minted against the public base URL
	downloadBaseURL := cfg.Delivery.DownloadBaseURL
	if downloadBaseURL == "" {
		downloadBaseURL = cfg.WebServer.BaseURL
	}
	if downloadBaseURL == "" {
		downloadBaseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}

	// Wire the workflow core
	requests := store.NewRequestStore(rdb, cfg.Redis)
	catalog := store.NewCatalogStore(rdb, cacheClient)
	docResolver := resolver.New(catalog)
	issuer := token.NewIssuer(rdb, downloadBaseURL)
	mailer := email.NewEmailService(cfg.SMTP)

	policy := token.Policy{
		ExpirationHours:          cfg.Delivery.ExpirationHours,
		MaxDownloads:             cfg.Delivery.MaxDownloads,
		RequireEmailVerification: cfg.Delivery.RequireEmailVerification,
	}
	manager := workflow.NewManager(requests, docResolver, issuer, mailer, policy)

	log.Info().
		Int("expiration_hours", policy.ExpirationHours).
		Int("max_downloads", policy.MaxDownloads).
		Bool("require_email_verification", policy.RequireEmailVerification).
		Bool("smtp_enabled", cfg.SMTP.Enabled).
		Msg("Delivery workflow initialized")

	// Create handler with dependency injection
	requestHandler := handler.NewRequestHandler(rdb, cacheClient, cfg, requests, manager, mailer, issuer)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	adminAuth := middleware.NewAdminAuth(cfg.Admin.APIKey, cfg.Admin.AuthEnabled)

	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Public routes
	r.HandleFunc("/health", requestHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/requests", requestHandler.CreateRequest).Methods("POST")
	r.HandleFunc("/download/{token}/qr", requestHandler.TokenQR).Methods("GET")

	// Operator routes
	r.Handle("/requests", adminAuth.Protect(http.HandlerFunc(requestHandler.ListRequests))).Methods("GET")
	r.Handle("/requests/{id}", adminAuth.Protect(http.HandlerFunc(requestHandler.GetRequest))).Methods("GET")
	r.Handle("/requests/{id}/approve", adminAuth.Protect(http.HandlerFunc(requestHandler.ApproveRequest))).Methods("POST")
	r.Handle("/requests/{id}/reject", adminAuth.Protect(http.HandlerFunc(requestHandler.RejectRequest))).Methods("POST")
	r.Handle("/requests/{id}/emails/{type}", adminAuth.Protect(http.HandlerFunc(requestHandler.SendStatusEmail))).Methods("POST")
	r.Handle("/admin/stats", adminAuth.Protect(http.HandlerFunc(requestHandler.AdminStats))).Methods("GET")
	r.Handle("/cache/metrics", adminAuth.Protect(http.HandlerFunc(requestHandler.CacheMetrics))).Methods("GET")

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Close cache
	if cacheClient != nil {
		cacheClient.Close()
	}

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
