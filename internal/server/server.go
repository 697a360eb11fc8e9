package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexora/opportunity-agent/internal/config"
	"github.com/nexora/opportunity-agent/internal/scheduler"
	"github.com/nexora/opportunity-agent/internal/server/middleware"
	"github.com/nexora/opportunity-agent/internal/server/ratelimit"
)

// Deps carries the collaborators the server needs.
type Deps struct {
	Store     Store
	Scheduler *scheduler.Scheduler // nil when running without background runs
	Runner    Runner               // nil disables the run-immediate endpoint

	ServerConfig   *config.ServerConfig
	JWTConfig      *config.JWTConfig
	PasswordConfig *config.PasswordConfig

	// BestThreshold segregates recommendation listings into best matches
	// and other suggestions.
	BestThreshold float64
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	scheduler   *scheduler.Scheduler
	runner      Runner
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	validator   *validator.Validate

	allowedOrigins []string
	bestThreshold  float64
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if deps.BestThreshold <= 0 {
		deps.BestThreshold = 0.7
	}

	s := &Server{
		store:          deps.Store,
		scheduler:      deps.Scheduler,
		runner:         deps.Runner,
		validator:      validator.New(),
		allowedOrigins: deps.ServerConfig.AllowedOrigins,
		bestThreshold:  deps.BestThreshold,
	}

	s.rateLimiter = ratelimit.NewLimiter(deps.ServerConfig.RateLimitRPS, deps.ServerConfig.RateLimitBurst)
	s.jwtService = NewJWTService(deps.JWTConfig)
	s.authHandler = NewAuthHandler(NewUserService(deps.Store, deps.PasswordConfig), s.jwtService)

	authed := middleware.Auth(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", authed(http.HandlerFunc(s.authHandler.UpdatePassword)))

	mux.Handle("GET /profile", authed(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("PUT /profile", authed(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("GET /preferences", authed(http.HandlerFunc(s.handleGetPreferences)))
	mux.Handle("PUT /preferences", authed(http.HandlerFunc(s.handleUpdatePreferences)))
	mux.Handle("POST /onboarding", authed(http.HandlerFunc(s.handleOnboarding)))

	mux.Handle("GET /opportunities", authed(http.HandlerFunc(s.handleListOpportunities)))
	mux.Handle("GET /recommendations", authed(http.HandlerFunc(s.handleListRecommendations)))
	mux.Handle("POST /recommendations/{id}/view", authed(http.HandlerFunc(s.handleMarkViewed)))
	mux.Handle("POST /recommendations/{id}/apply", authed(http.HandlerFunc(s.handleMarkApplied)))

	mux.Handle("GET /analytics", authed(http.HandlerFunc(s.handleAnalytics)))
	mux.Handle("POST /resumes", authed(http.HandlerFunc(s.handleUploadResume)))
	mux.Handle("GET /resumes", authed(http.HandlerFunc(s.handleListResumes)))

	mux.Handle("GET /scheduler/status", authed(http.HandlerFunc(s.handleSchedulerStatus)))
	mux.Handle("POST /scheduler/run", authed(http.HandlerFunc(s.handleRunNow)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", deps.ServerConfig.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until an interrupt or
// termination signal arrives.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] serve error: %v", err)
		}
	}()

	<-stop
	log.Println("[server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	log.Println("[server] stopped")
	return nil
}

// Handler returns the full middleware-wrapped handler. Test helper.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if slices.Contains(s.allowedOrigins, "*") {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && slices.Contains(s.allowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds per-client rate limiting
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID)

		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds()+1)))
			}
			log.Printf("[server] rate limit exceeded for %s", clientID)
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[server] %s %s from %s in %v", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies the client for rate limiting, preferring the
// remote IP without port.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return ip
}
