// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/api"
	"github.com/clipsense/clipsense/pkg/types"
)

const (
	maxBatchURLs    = 100
	requestsPerSec  = 20
	requestBurst    = 40
	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP surface over the detection client.
type Server struct {
	client  *api.Client
	logger  utils.Logger
	version string
}

// NewServer wraps a detection client in the HTTP surface.
func NewServer(client *api.Client, logger utils.Logger, version string) *Server {
	if logger == nil {
		logger = utils.NewLogger()
	}
	if version == "" {
		version = "dev"
	}
	return &Server{client: client, logger: logger, version: version}
}

type detectRequest struct {
	URL string `json:"url"`
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/detect", s.handleDetect).Methods(http.MethodPost)
	apiRouter.HandleFunc("/detect/batch", s.handleDetectBatch).Methods(http.MethodPost)
	apiRouter.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/cache", s.handleClearCache).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/preferences", s.handleUpdatePreferences).Methods(http.MethodPut)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.client.MetricsHandler()).Methods(http.MethodGet)

	return router
}

// Handler returns the full handler chain, rate limiting included.
func (s *Server) Handler() http.Handler {
	return rateLimitMiddleware(s.Router())
}

// Run serves on addr until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Run(addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	result := s.client.Detect(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDetectBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "urls is required"})
		return
	}
	if len(req.URLs) > maxBatchURLs {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("at most %d urls per batch", maxBatchURLs),
		})
		return
	}

	results := s.client.DetectBatch(r.Context(), req.URLs)
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.client.CacheStats())
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.client.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs types.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.client.UpdatePreferences(prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// rateLimitMiddleware bounds the request rate across all clients.
func rateLimitMiddleware(next http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSec), requestBurst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
