package router

import (
	"net/http"
	"strings"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.Handle("/metrics", metrics.Handler())

	// Product routes
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		ref := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products"), "/")

		switch {
		case ref == "" && r.Method == http.MethodGet:
			productHandler.List(w, r)
		case ref == "" && r.Method == http.MethodPost:
			productHandler.Create(w, r)
		case ref == "generate" && r.Method == http.MethodPost:
			productHandler.Generate(w, r)
		case ref != "" && r.Method == http.MethodGet:
			productHandler.Resolve(w, r, ref)
		case ref != "" && r.Method == http.MethodPut:
			productHandler.Update(w, r, ref)
		case ref != "" && r.Method == http.MethodDelete:
			productHandler.Delete(w, r, ref)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Order routes
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")

		switch {
		case rest == "internal/create" && r.Method == http.MethodPost:
			orderHandler.Create(w, r)
		case rest == "all" && r.Method == http.MethodGet:
			orderHandler.ListRecent(w, r)
		case rest == "" && r.Method == http.MethodGet:
			orderHandler.ListByUser(w, r)
		case rest != "" && r.Method == http.MethodGet:
			orderHandler.GetByID(w, r, rest)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
