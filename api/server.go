// Package api provides the HTTP REST API server for the newsletter agent.
//
// It exposes endpoints for subscriber registration, on-demand news
// aggregation, newsletter generation and delivery, and service status.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/harshapps/newsletter-agent/internal/agent"
	"github.com/harshapps/newsletter-agent/internal/config"
	"github.com/harshapps/newsletter-agent/internal/mailer"
	"github.com/harshapps/newsletter-agent/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	agent  *agent.Agent
	mail   *mailer.Mailer // nil when SMTP is not configured
	db     *store.Store   // nil when no database is configured
}

// NewServer creates a configured API server with all routes and middleware.
// mail and db may be nil; the affected endpoints degrade with 503.
func NewServer(cfg *config.Config, a *agent.Agent, mail *mailer.Mailer, db *store.Store) *Server {
	srv := &Server{
		cfg:   cfg,
		agent: a,
		mail:  mail,
		db:    db,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// News
		r.Get("/news", s.handleGetNews)
		r.Get("/trending", s.handleTrending)
		r.Get("/sources", s.handleSources)

		// Subscribers
		r.Post("/register", s.handleRegister)
		r.Get("/users", s.handleListUsers)
		r.Delete("/users/{email}", s.handleDeleteUser)

		// Newsletters
		r.Post("/generate-newsletter", s.handleGenerateNewsletter)
		r.Post("/test-newsletter", s.handleTestNewsletter)
		r.Post("/generate-newsletter-content", s.handleGenerateContent)
		r.Post("/send-newsletter", s.handleSendNewsletter)
		r.Get("/newsletters", s.handleListNewsletters)

		// Email
		r.Post("/test-email", s.handleTestEmail)

		// Status
		r.Get("/stats", s.handleStats)
		r.Get("/config/keys", s.handleConfigKeys)
	})

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  "dev",
			"email":    s.mail != nil,
			"database": s.db != nil,
			"sources":  s.agent.Aggregator().Registry().Names(),
			"time_utc": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
