package yahoofinance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harshapps/newsletter-agent/internal/news"
)

func TestAdapterInfo(t *testing.T) {
	a := New(news.NewScorer(nil), nil)
	info := a.Info()
	if info.Name != "Yahoo Finance" {
		t.Errorf("expected name Yahoo Finance, got %s", info.Name)
	}
	if info.Website == "" {
		t.Error("expected non-empty website")
	}
	if len(info.Credentials) != 0 {
		t.Errorf("expected no credentials, got %d", len(info.Credentials))
	}
}

func TestEnabledGate(t *testing.T) {
	a := New(news.NewScorer(nil), nil)

	cases := []struct {
		topics []string
		want   bool
	}{
		{[]string{"finance"}, true},
		{[]string{"stocks", "health"}, true},
		{[]string{"business"}, true},
		{[]string{"health", "sports"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := a.Enabled(tc.topics); got != tc.want {
			t.Errorf("Enabled(%v): got %v, want %v", tc.topics, got, tc.want)
		}
	}
}

func TestFetchFiltersAndLabels(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/finance/search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := searchResponse{News: []newsEntry{
			{Title: "Stocks rally as market opens higher", Link: "https://example.com/a", Summary: "rally", ProviderPublishTime: now.Unix()},
			{Title: "Gardening tips for spring", Link: "https://example.com/b", Summary: "irrelevant", ProviderPublishTime: now.Unix()},
			{Title: "Old finance story", Link: "https://example.com/c", Summary: "stale", ProviderPublishTime: now.Add(-48 * time.Hour).Unix()},
		}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := New(news.NewScorer(nil), []string{"AAPL"})
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), []string{"finance"}, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	it := items[0]
	if it.Title != "Stocks rally as market opens higher" {
		t.Errorf("wrong item survived filters: %s", it.Title)
	}
	if it.SourceLabel != "Yahoo Finance - AAPL" {
		t.Errorf("wrong source label: %s", it.SourceLabel)
	}
	if it.RelevanceScore <= 0 {
		t.Errorf("expected positive relevance, got %f", it.RelevanceScore)
	}
}

func TestFetchPerTickerCap(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Five relevant fresh items; only two may survive the cap.
		var resp searchResponse
		for i := 0; i < 5; i++ {
			resp.News = append(resp.News, newsEntry{
				Title:               "Finance update " + string(rune('A'+i)),
				Link:                "https://example.com",
				ProviderPublishTime: now.Unix(),
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := New(news.NewScorer(nil), []string{"MSFT"})
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), []string{"finance"}, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != maxPerTicker {
		t.Errorf("expected %d items, got %d", maxPerTicker, len(items))
	}
}

func TestFetchFallbackWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := New(news.NewScorer(nil), []string{"AAPL"})
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), []string{"finance"}, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 fallback items, got %d", len(items))
	}
	for _, it := range items {
		if it.SourceLabel != "System - Fallback" {
			t.Errorf("expected fallback label, got %s", it.SourceLabel)
		}
		if !it.System() {
			t.Errorf("fallback item %q should be system-generated", it.Title)
		}
	}
	if items[0].Title != "Technology Market Update" || items[1].Title != "AI and Innovation News" {
		t.Errorf("unexpected fallback titles: %q, %q", items[0].Title, items[1].Title)
	}
	if items[0].RelevanceScore != 0.8 || items[1].RelevanceScore != 0.9 {
		t.Errorf("unexpected fallback scores: %f, %f", items[0].RelevanceScore, items[1].RelevanceScore)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := truncate(long, 200)
	if len(got) != 203 {
		t.Errorf("expected 203 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}
	if truncate("short", 200) != "short" {
		t.Error("short strings must pass through unchanged")
	}

	multibyte := strings.Repeat("é", 250)
	got = truncate(multibyte, 200)
	if !utf8.ValidString(got) {
		t.Error("truncation must not split a rune")
	}
	if n := utf8.RuneCountInString(got); n != 203 {
		t.Errorf("expected 203 runes, got %d", n)
	}
}
