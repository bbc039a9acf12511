package api

import (
	"net/http"

	"github.com/google/uuid"
)

// SetupRoutes configures all API routes.
func SetupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		handler.HandleRoot(w, r)
	}))
	mux.HandleFunc("/forecast", withCORS(handler.HandleForecast))
	mux.HandleFunc("/chat", withCORS(handler.HandleChat))
}

// withCORS adds allow-all CORS headers and answers preflight requests. The
// service is consumed by a separate presentation layer on another origin.
func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// RequestID assigns a request identifier and echoes it in the response
// headers so requests can be correlated across the presentation layer.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
