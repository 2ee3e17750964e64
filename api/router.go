package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CypherAli/My-project/cache"
	"github.com/CypherAli/My-project/ratelimit"
)

// Router serves the read-only market data API. Handlers read only from the
// redis caches the engine publishes into, never from the live books, so they
// are safe to call from any number of HTTP goroutines.
type Router struct {
	router    *mux.Router
	redis     *cache.RedisCache
	snapshots *cache.SnapshotPublisher
	trades    *cache.TradesCache
}

func NewRouter(redis *cache.RedisCache, snapshots *cache.SnapshotPublisher, trades *cache.TradesCache) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		redis:     redis,
		snapshots: snapshots,
		trades:    trades,
	}

	limiter := ratelimit.NewTokenBucketLimiter(redis.GetClient(), ratelimit.Config{
		MaxTokens:      100,
		RefillRate:     10,
		RefillInterval: 1 * time.Second,
		KeyPrefix:      "ratelimit:",
	})
	rateLimitMiddleware := ratelimit.NewMiddleware(ratelimit.MiddlewareConfig{
		Limiter:   limiter,
		SkipPaths: []string{"/healthz", "/metrics"},
	})
	r.router.Use(rateLimitMiddleware.Handler)

	r.router.HandleFunc("/api/orderbook/{symbol}", r.GetOrderbook).Methods("GET")
	r.router.HandleFunc("/api/trades/{symbol}", r.GetTrades).Methods("GET")
	r.router.HandleFunc("/healthz", r.HealthCheck).Methods("GET")
	r.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
