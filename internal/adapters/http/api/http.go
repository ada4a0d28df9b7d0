// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vsm/qualitycheck/internal/domain/model"
	"github.com/vsm/qualitycheck/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Check runs the quality check for one batch.
	Check(ctx context.Context, event model.Event) (model.Event, error)
	// InvalidateRules drops the cached rule document.
	InvalidateRules()
}

// Server wires HTTP routes for the quality-check API.
type Server struct {
	healthHandler *HealthHandler
	checkHandler  *CheckHandler
	rulesHandler  *RulesHandler
	requestLogger logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		checkHandler:  NewCheckHandler(deps),
		rulesHandler:  NewRulesHandler(deps),
		requestLogger: logger.Get().Named("http"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/quality-check", s.wrap(s.checkHandler.HandlePostCheck, "quality_check"))
	mux.HandleFunc("/quality-check/cache/invalidate", s.wrap(s.rulesHandler.HandleInvalidate, "cache_invalidate"))
}

func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(next, endpoint), s.requestLogger)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
