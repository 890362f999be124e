// Package hackernews implements the Hacker News source adapter using the
// public Firebase API: a top-story ID listing followed by per-ID item
// lookups, no API key required.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harshapps/newsletter-agent/internal/infra"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/source"
)

const (
	sourceName     = "Hacker News"
	defaultBaseURL = "https://hacker-news.firebaseio.com"

	// scanLimit bounds how many top-story IDs we look up in detail.
	scanLimit = 20

	// maxItems caps the adapter's total contribution.
	maxItems = 10
)

// hnTopics gates automatic selection; Hacker News skews tech and startup
// coverage with some business and science reach.
var hnTopics = map[string]bool{
	"tech":       true,
	"technology": true,
	"business":   true,
	"science":    true,
}

// Adapter implements source.Source for Hacker News top stories.
type Adapter struct {
	baseURL string
	client  *http.Client
	scorer  *news.Scorer
}

// New creates a Hacker News adapter.
func New(scorer *news.Scorer) *Adapter {
	return &Adapter{
		baseURL: defaultBaseURL,
		client:  infra.NewHTTPClient(15 * time.Second),
		scorer:  scorer,
	}
}

// Info returns metadata about this adapter.
func (a *Adapter) Info() source.Info {
	return source.Info{
		Name:        sourceName,
		Description: "Top stories from the Hacker News Firebase API",
		Website:     "https://news.ycombinator.com",
		Credentials: nil,
	}
}

// Enabled reports whether any requested topic fits Hacker News coverage.
func (a *Adapter) Enabled(topics []string) bool {
	for _, t := range topics {
		if hnTopics[t] {
			return true
		}
	}
	return false
}

// story mirrors the item detail payload, fields we use only.
type story struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	Time  int64  `json:"time"`
	By    string `json:"by"`
}

// Fetch reads the top-story listing and resolves story details until the
// scan limit or the item cap is reached. Individual lookup failures are
// logged and skipped; only a failure to read the ID listing itself aborts.
func (a *Adapter) Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error) {
	ids, err := a.fetchTopIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	if len(ids) > scanLimit {
		ids = ids[:scanLimit]
	}

	var items []news.Item
	for _, id := range ids {
		if len(items) >= maxItems {
			break
		}

		st, err := a.fetchStory(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[hackernews] fetch item %d: %v", id, err)
			continue
		}
		if st.Type != "story" || st.Title == "" {
			continue
		}

		publishedAt := time.Unix(st.Time, 0)
		if publishedAt.Before(windowStart) {
			continue
		}
		if !a.scorer.Relevant(st.Title, topics) {
			continue
		}

		url := st.URL
		if url == "" {
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", st.ID)
		}

		items = append(items, news.Item{
			Title:          st.Title,
			Summary:        st.Text,
			URL:            url,
			SourceLabel:    sourceName,
			PublishedAt:    publishedAt,
			RelevanceScore: a.scorer.Score(st.Title, topics),
		})
	}

	return items, nil
}

func (a *Adapter) fetchTopIDs(ctx context.Context) ([]int, error) {
	url := a.baseURL + "/v0/topstories.json"
	body, err := infra.DoGet(ctx, a.client, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var ids []int
	if err := json.NewDecoder(body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return ids, nil
}

func (a *Adapter) fetchStory(ctx context.Context, id int) (*story, error) {
	url := fmt.Sprintf("%s/v0/item/%d.json", a.baseURL, id)
	body, err := infra.DoGet(ctx, a.client, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var st story
	if err := json.NewDecoder(body).Decode(&st); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return &st, nil
}
