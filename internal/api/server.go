// Package api implements the archive's HTTP surface: GET /height, POST
// /query (accumulated, budget-bounded), and the supplemented /metrics and
// /endpoints debug routes.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archived/internal/config"
	"archived/internal/queryhandler"
	"archived/internal/rpcclient"
)

// Server bundles the archive's query engine and upstream RPC client behind
// one HTTP listener.
type Server struct {
	handler    *queryhandler.QueryHandler
	rpc        *rpcclient.Client
	httpServer *http.Server
	cfg        config.HttpServerConfig
}

// NewServer builds the router, wires the middleware chain, and binds the
// listener address from cfg. Callers still need to call Start.
func NewServer(handler *queryhandler.QueryHandler, rpc *rpcclient.Client, cfg config.HttpServerConfig) *Server {
	r := mux.NewRouter()

	s := &Server{handler: handler, rpc: rpc, cfg: cfg}

	r.Use(commonMiddleware)
	r.Use(rateLimitMiddleware)

	r.HandleFunc("/height", s.handleHeight).Methods(http.MethodGet)
	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/endpoints", s.handleEndpoints).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	compressed := handlers.CompressHandler(r)

	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: compressed,
	}
	return s
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHeight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"height": s.handler.ArchiveHeight()})
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	if s.rpc == nil {
		writeJSON(w, http.StatusOK, map[string]any{"endpoints": []any{}})
		return
	}
	var out []map[string]any
	for _, e := range s.rpc.Endpoints() {
		out = append(out, map[string]any{"url": e.URL(), "tip": e.Tip()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"endpoints": out})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
