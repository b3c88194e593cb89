// Package api provides the HTTP shell over the feeder: a manual trigger
// endpoint plus health and status. The shell owns no state; the cursor
// travels in request and response bodies.
package api

import (
	"context"
	"net"
	"net/http"

	"recipefeeder/internal/config"
	"recipefeeder/internal/port/outbound"
)

// Server wraps the HTTP server for the feeder API.
type Server struct {
	httpServer *http.Server
}

// NewServer builds the HTTP server with all routes registered.
func NewServer(
	cfg config.APIConfig,
	feederCfg config.FeederConfig,
	newFeeder FeederFactory,
	database DatabaseHealth,
	queue outbound.EmbeddingQueueHealth,
	index outbound.VectorIndex,
) *Server {
	feedHandler := NewFeedHandler(feederCfg, newFeeder)
	healthHandler := NewHealthHandler(database, queue, index)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/feed", requireMethod(http.MethodPost, feedHandler.TriggerFeed))
	mux.HandleFunc("/health", requireMethod(http.MethodGet, healthHandler.GetHealth))
	mux.HandleFunc("/status", requireMethod(http.MethodGet, healthHandler.GetStatus))

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// requireMethod scopes a handler to one HTTP method, mirroring the method
// patterns of the Go 1.22+ ServeMux (GET also serves HEAD; other methods get
// 405 with an Allow header) so the routes behave the same on Go 1.21.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// Handler returns the underlying handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
