package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harshapps/newsletter-agent/internal/news"
)

// newTestServer serves topstories.json and per-ID item lookups from the
// given story table.
func newTestServer(t *testing.T, ids []int, stories map[int]story) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v0/topstories.json" {
			json.NewEncoder(w).Encode(ids)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/v0/item/") {
			idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v0/item/"), ".json")
			id, _ := strconv.Atoi(idStr)
			st, ok := stories[id]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(st)
			return
		}
		t.Errorf("unexpected path %s", r.URL.Path)
	}))
}

func TestEnabledGate(t *testing.T) {
	a := New(news.NewScorer(nil))

	cases := []struct {
		topics []string
		want   bool
	}{
		{[]string{"technology"}, true},
		{[]string{"tech"}, true},
		{[]string{"science", "sports"}, true},
		{[]string{"sports"}, false},
		{[]string{"entertainment", "politics"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := a.Enabled(tc.topics); got != tc.want {
			t.Errorf("Enabled(%v): got %v, want %v", tc.topics, got, tc.want)
		}
	}
}

func TestFetchFiltersAndNormalizes(t *testing.T) {
	now := time.Now()
	stories := map[int]story{
		1: {ID: 1, Type: "story", Title: "New AI software ships", URL: "https://example.com/ai", Time: now.Unix()},
		2: {ID: 2, Type: "job", Title: "Hiring tech engineers", Time: now.Unix()},
		3: {ID: 3, Type: "story", Title: "Tech retrospective from 2019", Time: now.Add(-72 * time.Hour).Unix()},
		4: {ID: 4, Type: "story", Title: "Show HN: my photo album", Time: now.Unix()},
		5: {ID: 5, Type: "story", Title: "Ask HN: best startup advice", Time: now.Unix()},
	}
	srv := newTestServer(t, []int{1, 2, 3, 4, 5}, stories)
	defer srv.Close()

	a := New(news.NewScorer(nil))
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), []string{"technology"}, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Story 1 matches "AI" and "software", story 5 matches "startup".
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Title != "New AI software ships" {
		t.Errorf("wrong first item: %s", items[0].Title)
	}
	if items[0].SourceLabel != "Hacker News" {
		t.Errorf("wrong source label: %s", items[0].SourceLabel)
	}
	// Text posts get a comments-page URL.
	if items[1].URL != "https://news.ycombinator.com/item?id=5" {
		t.Errorf("expected comments URL for text post, got %s", items[1].URL)
	}
}

func TestFetchSkipsFailedLookups(t *testing.T) {
	now := time.Now()
	stories := map[int]story{
		2: {ID: 2, Type: "story", Title: "Tech news that loads fine", Time: now.Unix()},
	}
	// ID 1 404s; the adapter must continue to ID 2.
	srv := newTestServer(t, []int{1, 2}, stories)
	defer srv.Close()

	a := New(news.NewScorer(nil))
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), []string{"technology"}, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Tech news that loads fine" {
		t.Errorf("expected the healthy story, got %+v", items)
	}
}

func TestFetchScanAndItemCaps(t *testing.T) {
	now := time.Now()
	var ids []int
	stories := map[int]story{}
	for i := 1; i <= 30; i++ {
		ids = append(ids, i)
		stories[i] = story{
			ID:    i,
			Type:  "story",
			Title: fmt.Sprintf("Tech story %d", i),
			URL:   "https://example.com",
			Time:  now.Unix(),
		}
	}
	srv := newTestServer(t, ids, stories)
	defer srv.Close()

	a := New(news.NewScorer(nil))
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), []string{"technology"}, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != maxItems {
		t.Errorf("expected cap of %d items, got %d", maxItems, len(items))
	}
}

func TestFetchErrorsWhenListingUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := New(news.NewScorer(nil))
	a.baseURL = srv.URL

	if _, err := a.Fetch(context.Background(), []string{"technology"}, time.Now()); err == nil {
		t.Error("expected error when the ID listing is unavailable")
	}
}
