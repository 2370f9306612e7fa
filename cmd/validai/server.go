package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// Server exposes the pipeline over HTTP
type Server struct {
	router   *mux.Router
	pipeline *Pipeline
	trending *TrendingService
	cache    *ContentCache
	hub      *EventHub
	limiters *visitorLimiters
}

// NewServer builds the router and handlers
func NewServer(pipeline *Pipeline, trending *TrendingService, cache *ContentCache, hub *EventHub, cfg *Config) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		pipeline: pipeline,
		trending: trending,
		cache:    cache,
		hub:      hub,
		limiters: newVisitorLimiters(rate.Limit(float64(cfg.RateLimitPerMinute)/60.0), cfg.RateLimitBurst),
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/trending", s.handleTrending).Methods(http.MethodGet)
	api.HandleFunc("/events", s.hub.ServeWS).Methods(http.MethodGet)
	api.Handle("/verify", s.rateLimit(http.HandlerFunc(s.handleVerify))).Methods(http.MethodPost)

	return s
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "ValidaÍ",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    MetricsSnapshot(s.cache),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	items := s.trending.Trending(r.Context())
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    items,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	var req VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "Dados inválidos",
			Message: "corpo da requisição não é um JSON válido",
		})
		return
	}

	result, err := s.pipeline.Verify(r.Context(), requestID, &req)
	if err != nil {
		s.writeError(w, requestID, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
		Message: "Verificação concluída com sucesso",
	})
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, err error) {
	status := HTTPStatus(err)
	Logger().Error("verification %s failed (%d): %v", requestID, status, err)

	message := "Tente novamente em alguns minutos"
	var appErr *AppError
	userError := "Erro interno do sistema"
	if errors.As(err, &appErr) {
		userError = appErr.Message
		if appErr.Type == ErrorTypeInput {
			message = "corrija os dados enviados"
		}
	}

	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   userError,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger().Error("failed to encode response: %v", err)
	}
}

// visitorLimiters keeps one token bucket per client IP
type visitorLimiters struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newVisitorLimiters(limit rate.Limit, burst int) *visitorLimiters {
	if burst < 1 {
		burst = 1
	}
	return &visitorLimiters{
		visitors: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (v *visitorLimiters) limiterFor(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	limiter, ok := v.visitors[ip]
	if !ok {
		limiter = rate.NewLimiter(v.limit, v.burst)
		v.visitors[ip] = limiter
	}
	return limiter
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiters.limiterFor(ip).Allow() {
			writeJSON(w, http.StatusTooManyRequests, APIResponse{
				Success: false,
				Error:   "Limite de verificações atingido",
				Message: "aguarde um momento antes de tentar novamente",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
