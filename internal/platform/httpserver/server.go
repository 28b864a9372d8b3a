package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	answerservice "qaboard/contexts/community-experience/answer-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "qaboard/internal/platform/httpserver/docs"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(context.Context) error

type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	http    *http.Server
	logger  *slog.Logger
	addr    string
	metrics *Metrics
	health  HealthCheck
	answers answerservice.Module
}

type Options struct {
	Metrics *Metrics
	Health  HealthCheck
}

func New(
	answers answerservice.Module,
	logger *slog.Logger,
	addr string,
	opts Options,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics("qaboard")
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		metrics: opts.Metrics,
		health:  opts.Health,
		answers: answers,
	}
	s.registerRoutes()
	s.handler = withRequestID(withObservability(s.metrics, s.logger, s.mux))
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes() {
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /answer/create/{question_id}", s.handleCreateAnswer)
	s.mux.HandleFunc("GET /answer/modify/{id}", s.handleModifyForm)
	s.mux.HandleFunc("POST /answer/modify/{id}", s.handleModifyAnswer)
	s.mux.HandleFunc("GET /answer/delete/{id}", s.handleDeleteAnswer)
	s.mux.HandleFunc("GET /answer/vote/{id}", s.handleVoteAnswer)
	s.mux.HandleFunc("GET /answer/list/{question_id}", s.handleListAnswers)
	s.mux.HandleFunc("GET /answer/{id}", s.handleGetAnswer)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("health check failed",
				"event", "http_health_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
