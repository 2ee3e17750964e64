package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

const (
	defaultTradesLimit = 50
	maxTradesLimit     = 100

	handlerTimeout = 3 * time.Second
)

// GetOrderbook handles GET /api/orderbook/{symbol}. It serves the latest
// depth snapshot the engine published; an expired or missing snapshot means
// the symbol has not traded recently.
func (r *Router) GetOrderbook(w http.ResponseWriter, req *http.Request) {
	symbol := mux.Vars(req)["symbol"]

	ctx, cancel := context.WithTimeout(req.Context(), handlerTimeout)
	defer cancel()

	snapshot, err := r.snapshots.GetOrderbook(ctx, symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, "No orderbook snapshot for "+symbol)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	_ = json.NewEncoder(w).Encode(snapshot)
}

// GetTrades handles GET /api/trades/{symbol}?limit=50, newest first.
func (r *Router) GetTrades(w http.ResponseWriter, req *http.Request) {
	symbol := mux.Vars(req)["symbol"]

	limit := int64(defaultTradesLimit)
	if limitStr := req.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > maxTradesLimit {
			limit = maxTradesLimit
		}
	}

	ctx, cancel := context.WithTimeout(req.Context(), handlerTimeout)
	defer cancel()

	trades, err := r.trades.GetRecent(ctx, symbol, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve trades")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"symbol": symbol,
		"trades": trades,
		"count":  len(trades),
	})
}

// HealthCheck handles GET /healthz. Healthy means redis answers: without it
// the service can neither consume commands nor serve data.
func (r *Router) HealthCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlerTimeout)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	if err := r.redis.GetClient().Ping(ctx).Err(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
