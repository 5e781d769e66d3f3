package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wasim/internal/constants"
	"wasim/internal/errors"
	"wasim/internal/middleware"
	"wasim/internal/models"
	"wasim/internal/store"
	"wasim/internal/tools"
	"wasim/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router *mux.Router
	logger *logrus.Logger
	tools  *tools.Registry
	store  *store.Memory
	cfg    models.ServerConfig
	server *http.Server
}

// ToolCallResponse wraps a successful tool result
type ToolCallResponse struct {
	Result interface{} `json:"result"`
}

func NewServer(cfg models.ServerConfig, registry *tools.Registry, mem *store.Memory, logger *logrus.Logger, verbose bool) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: logger,
		tools:  registry,
		store:  mem,
		cfg:    cfg,
	}

	s.router.Use(middleware.VerboseLoggingMiddleware(verbose))
	s.router.Use(middleware.ObservabilityMiddleware(logger))
	s.router.Use(middleware.DetailedLoggingMiddleware(logger, middleware.DefaultDetailedLoggingConfig()))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/tools", s.handleListTools()).Methods(http.MethodGet)
	v1.HandleFunc("/tools/{name}", s.handleCallTool()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting tool server on port %d", s.cfg.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"chats":  s.store.ChatCount(),
		})
	}
}

func (s *Server) handleListTools() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusOK, map[string]interface{}{"tools": s.tools.List()})
	}
}

func (s *Server) handleCallTool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.DefaultMaxRequestBodyBytes))
		if err != nil {
			s.writeError(w, r, errors.NewValidationError("", ""))
			return
		}

		result, err := s.tools.Execute(r.Context(), name, body)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, ToolCallResponse{Result: result})
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeJSON(w, r, errors.HTTPStatusCode(err), errors.ToHTTPResponse(err, tracing.GetRequestID(r.Context())))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithFields(logrus.Fields{
			"request_id": tracing.GetRequestID(r.Context()),
			"url":        r.URL.Path,
		}).WithError(err).Error("Failed to encode response")
	}
}
