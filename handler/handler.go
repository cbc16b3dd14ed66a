package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"download-request-service/cache"
	"download-request-service/config"
	"download-request-service/store"
	"download-request-service/token"
	"download-request-service/workflow"

	"github.com/go-redis/redis/v8"
)

// RequestHandler exposes the download-request workflow over HTTP.
type RequestHandler struct {
	redis    *redis.Client
	cache    *cache.Cache
	config   config.Config
	requests *store.RequestStore
	manager  *workflow.Manager
	mailer   workflow.Mailer
	issuer   *token.Issuer
	baseURL  string
}

// NewRequestHandler creates the handler with its collaborators injected.
func NewRequestHandler(rdb *redis.Client, cacheClient *cache.Cache, cfg config.Config, requests *store.RequestStore, manager *workflow.Manager, mailer workflow.Mailer, issuer *token.Issuer) *RequestHandler {
	// QR codes must encode the same host the issuer minted URLs against
	baseURL := cfg.Delivery.DownloadBaseURL
	if baseURL == "" {
		baseURL = cfg.WebServer.BaseURL
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}
	return &RequestHandler{
		redis:    rdb,
		cache:    cacheClient,
		config:   cfg,
		requests: requests,
		manager:  manager,
		mailer:   mailer,
		issuer:   issuer,
		baseURL:  baseURL,
	}
}

func (h *RequestHandler) operationTimeout() time.Duration {
	return time.Duration(h.config.Redis.OperationTimeout) * time.Second
}

// HealthCheck handles GET /health
func (h *RequestHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 2*time.Second)
	defer cancel()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "unhealthy",
			"redis":  "unavailable",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"redis":  "connected",
	})
}

// CacheMetrics handles GET /cache/metrics
func (h *RequestHandler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.config.Cache.Enabled || h.cache == nil {
		SendJSONError(w, http.StatusServiceUnavailable, errors.New("cache is disabled"), "")
		return
	}

	SendJSONSuccess(w, http.StatusOK, h.cache.GetMetricsSnapshot())
}
