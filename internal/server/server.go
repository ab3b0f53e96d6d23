// Package server exposes documents over HTTP and WebSocket.
//
// The REST surface covers document CRUD, history navigation, grouping,
// and export; the WebSocket endpoint carries live editing sessions.
// One editor session exists per open document, shared by every client;
// each applied change is broadcast to connected sockets and autosaved
// to the store.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

// Server is the HTTP/WS front end over a document store.
type Server struct {
	registry *registry
	store    store.Store
	logger   *log.Logger
}

// New creates a server over the given store. The logger receives
// request logs at debug level and lifecycle events at info level.
func New(st store.Store, logger *log.Logger) *Server {
	return &Server{
		registry: newRegistry(st, logger),
		store:    st,
		logger:   logger,
	}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	// The browser canvas is served from a different origin during
	// development, so CORS stays permissive.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"ETag", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Delete("/", s.handleDelete)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Post("/groups", s.handleCreateGroup)
			r.Get("/export.{format:dot|svg|png|pdf}", s.handleExport)
			r.Get("/ws", s.handleWS)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains connections and
// closes every open session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.registry.closeAll(context.Background())
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.registry.closeAll(shutdownCtx)
	return err
}

// requestLogger logs each request at debug level with its duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

// writeError maps coded errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.CodeInternal
	}
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeInvalidDocument:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: code, Message: errors.UserMessage(err)})
}
