package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harshapps/newsletter-agent/internal/source"
	"github.com/harshapps/newsletter-agent/internal/store"
)

// RegisterRequest is the body for POST /api/v1/register.
type RegisterRequest struct {
	Email           string   `json:"email"`
	Topics          []string `json:"topics"`
	PreferredSource string   `json:"preferred_source,omitempty"` // "Auto" or a source name
}

// NewsletterRequest is the body for the newsletter generation endpoints.
type NewsletterRequest struct {
	Email           string   `json:"email,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	PreferredSource string   `json:"preferred_source,omitempty"`
}

// TestEmailRequest is the body for POST /api/v1/test-email.
type TestEmailRequest struct {
	Email string `json:"email"`
}

// ── News ──

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	topics := splitTopics(r.URL.Query().Get("topics"))
	if len(topics) == 0 {
		writeError(w, http.StatusBadRequest, "topics query parameter is required")
		return
	}
	preferred := r.URL.Query().Get("source")

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	result, err := s.agent.Aggregator().GetNews(ctx, topics, preferred)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"trending_topics": s.agent.Aggregator().TrendingTopics(ctx),
		},
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	var infos []source.Info
	for _, src := range s.agent.Aggregator().Registry().All() {
		infos = append(infos, src.Info())
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: infos})
}

// ── Subscribers ──

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "at least one topic is required")
		return
	}

	sub, err := s.db.Subscribe(req.Email, req.Topics, req.PreferredSource)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sub})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	subs, err := s.db.Subscribers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: subs})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	email := chi.URLParam(r, "email")
	err := s.db.Unsubscribe(email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "user deleted", "email": email},
	})
}

// ── Newsletters ──

// handleGenerateNewsletter starts a full pipeline run for a registered
// subscriber in the background and returns immediately.
func (s *Server) handleGenerateNewsletter(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	var req NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := s.db.Subscriber(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	topics := req.Topics
	if len(topics) == 0 {
		topics = sub.Topics
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.agent.Deliver(ctx, sub.Email, topics, sub.PreferredSource); err != nil {
			log.Printf("[api] background delivery to %s: %v", sub.Email, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"message": "newsletter generation started",
			"email":   sub.Email,
			"topics":  topics,
		},
	})
}

// handleTestNewsletter runs generation synchronously for a registered
// subscriber and returns the rendered newsletter without sending it.
func (s *Server) handleTestNewsletter(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	var req NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := s.db.Subscriber(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	topics := req.Topics
	if len(topics) == 0 {
		topics = sub.Topics
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	nl, result, err := s.agent.GenerateContent(ctx, sub.Email, topics, sub.PreferredSource)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"newsletter":   nl,
			"news_count":   nl.NewsCount,
			"sources_used": result.SourcesUsed,
			"date_fetched": result.DateFetched,
		},
	})
}

// handleGenerateContent renders a newsletter for arbitrary topics without
// requiring registration, email, or a database.
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "at least one topic is required")
		return
	}

	email := req.Email
	if email == "" {
		email = "anonymous@example.com"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	nl, result, err := s.agent.GenerateContent(ctx, email, req.Topics, req.PreferredSource)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"newsletter":   nl,
			"news_count":   nl.NewsCount,
			"sources_used": result.SourcesUsed,
			"date_fetched": result.DateFetched,
		},
	})
}

// handleSendNewsletter runs the full pipeline synchronously for a
// registered subscriber, including email delivery.
func (s *Server) handleSendNewsletter(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	if s.mail == nil {
		writeError(w, http.StatusServiceUnavailable, "email not configured")
		return
	}

	var req NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := s.db.Subscriber(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	nl, err := s.agent.Deliver(ctx, sub.Email, sub.Topics, sub.PreferredSource)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"message": "newsletter sent",
			"email":   sub.Email,
			"subject": nl.Subject,
		},
	})
}

func (s *Server) handleListNewsletters(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	nls, err := s.db.Newsletters(r.URL.Query().Get("email"), 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: nls})
}

// ── Email / status ──

func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	if s.mail == nil {
		writeError(w, http.StatusServiceUnavailable, "email not configured")
		return
	}

	var req TestEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	if err := s.mail.SendTest(req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "test email sent", "email": req.Email},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	stats, err := s.db.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

// splitTopics parses a comma-separated topics parameter.
func splitTopics(raw string) []string {
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, strings.ToLower(t))
		}
	}
	return topics
}
