package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/harshapps/newsletter-agent/internal/agent"
	"github.com/harshapps/newsletter-agent/internal/config"
	"github.com/harshapps/newsletter-agent/internal/mailer"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/newsletter"
	"github.com/harshapps/newsletter-agent/internal/source"
)

type staticSource struct {
	name  string
	items []news.Item
}

func (s *staticSource) Info() source.Info {
	return source.Info{Name: s.name, Description: "static source for tests"}
}

func (s *staticSource) Enabled(topics []string) bool { return true }

func (s *staticSource) Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error) {
	return s.items, nil
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(msgs ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

// newTestServer builds a server with one static news source, a template
// generator, a fake mail sender, and no database.
func newTestServer(t *testing.T) (*Server, *fakeSender) {
	t.Helper()

	reg := source.NewRegistry()
	src := &staticSource{
		name: "Test Wire",
		items: []news.Item{
			{
				Title:          "Technology platform expands",
				Summary:        "A platform grew.",
				URL:            "https://example.com/a",
				SourceLabel:    "Test Wire",
				PublishedAt:    time.Now().Add(-time.Hour),
				RelevanceScore: 1.5,
			},
		},
	}
	if err := reg.Register(src); err != nil {
		t.Fatalf("Register: %v", err)
	}

	agg := source.NewAggregator(reg, news.NewScorer(nil))
	gen := newsletter.NewGenerator(nil)
	sender := &fakeSender{}
	mail := mailer.NewWithSender("agent@example.com", sender)
	a := agent.New(agg, gen, mail, nil)

	return NewServer(&config.Config{}, a, mail, nil), sender
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := doRequest(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got status %d", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		if !resp.Success {
			t.Errorf("%s: expected success", path)
		}
	}
}

func TestGetNewsRequiresTopics(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/news", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error == "" {
		t.Errorf("expected error envelope, got %+v", resp)
	}
}

func TestGetNewsReturnsItems(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/news?topics=technology", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var result news.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.News) != 1 || result.News[0].Title != "Technology platform expands" {
		t.Errorf("unexpected news: %+v", result.News)
	}
	if len(result.SourcesUsed) != 1 || result.SourcesUsed[0] != "Test Wire" {
		t.Errorf("unexpected sources used: %v", result.SourcesUsed)
	}
}

func TestSourcesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/sources", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body struct {
		Data []source.Info `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Name != "Test Wire" {
		t.Errorf("unexpected sources: %+v", body.Data)
	}
}

func TestTrendingEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/trending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !decodeResponse(t, rec).Success {
		t.Error("expected success")
	}
}

func TestRegisterWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/register", RegisterRequest{
		Email:  "user@example.com",
		Topics: []string{"technology"},
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", rec.Code)
	}
}

func TestDeleteUserWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/users/user@example.com", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", rec.Code)
	}
}

func TestGenerateContentWithoutRegistration(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate-newsletter-content", NewsletterRequest{
		Topics: []string{"technology"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var payload struct {
		Newsletter newsletter.Newsletter `json:"newsletter"`
		NewsCount  int                   `json:"news_count"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Newsletter.Subject == "" {
		t.Error("expected a subject")
	}
	if payload.Newsletter.GenerationMethod != newsletter.MethodTemplate {
		t.Errorf("expected template generation without a provider, got %s", payload.Newsletter.GenerationMethod)
	}
	if payload.NewsCount != 1 {
		t.Errorf("expected news_count 1, got %d", payload.NewsCount)
	}
}

func TestGenerateContentRequiresTopics(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/generate-newsletter-content", NewsletterRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestTestEmailEndpoint(t *testing.T) {
	srv, sender := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/test-email", TestEmailRequest{Email: "user@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message sent, got %d", len(sender.sent))
	}
}

func TestTestEmailRejectsInvalidAddress(t *testing.T) {
	srv, sender := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/test-email", TestEmailRequest{Email: "not-an-address"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no messages sent, got %d", len(sender.sent))
	}
}

func TestStatsWithoutDatabase(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", rec.Code)
	}
}

func TestConfigKeysEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/config/keys", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !decodeResponse(t, rec).Success {
		t.Error("expected success")
	}
}
