// Package newsapi implements the NewsAPI.org source adapter. It is the one
// credentialed adapter: construction requires an API key, and registration
// is skipped entirely when no key is configured.
//
// An optional Summarizer collaborator rewrites article summaries; when it is
// absent or fails, the article's own description is used as-is.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/harshapps/newsletter-agent/internal/infra"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/source"
)

const (
	sourceName     = "NewsAPI"
	defaultBaseURL = "https://newsapi.org"

	// pageSize bounds each everything query.
	pageSize = 10

	// maxPerTopic limits how many articles each topic contributes.
	maxPerTopic = 5
)

// Adapter implements source.Source for NewsAPI keyword search.
type Adapter struct {
	baseURL    string
	client     *http.Client
	apiKey     string
	scorer     *news.Scorer
	summarizer news.Summarizer
}

// New creates a NewsAPI adapter. summarizer may be nil.
func New(apiKey string, scorer *news.Scorer, summarizer news.Summarizer) *Adapter {
	return &Adapter{
		baseURL:    defaultBaseURL,
		client:     infra.NewHTTPClient(20 * time.Second),
		apiKey:     apiKey,
		scorer:     scorer,
		summarizer: summarizer,
	}
}

// Info returns metadata about this adapter.
func (a *Adapter) Info() source.Info {
	return source.Info{
		Name:        sourceName,
		Description: "Keyword search across thousands of outlets via newsapi.org",
		Website:     "https://newsapi.org",
		Credentials: []source.Credential{
			{
				Name:        "api_key",
				Description: "NewsAPI key from newsapi.org",
				Required:    true,
				EnvVar:      "NEWS_API_KEY",
			},
		},
	}
}

// Enabled always reports true: keyword search serves any topic. The
// registration layer keeps this adapter out of the registry when no API
// key is configured, so Enabled never has to check the credential.
func (a *Adapter) Enabled(topics []string) bool {
	return true
}

// everythingResponse mirrors the /v2/everything payload, fields we use only.
type everythingResponse struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

type outlet struct {
	Name string `json:"name"`
}

type article struct {
	Source      outlet `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Fetch runs one everything query per topic, keyed on the topic's primary
// keyword, and collects relevant articles. Per-topic failures are logged
// and skipped.
func (a *Adapter) Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error) {
	var items []news.Item

	for _, topic := range topics {
		arts, err := a.search(ctx, a.scorer.PrimaryKeyword(topic), windowStart)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[newsapi] search %s: %v", topic, err)
			continue
		}

		count := 0
		for _, art := range arts {
			if count >= maxPerTopic {
				break
			}
			if art.Title == "" || art.Title == "[Removed]" {
				continue
			}

			publishedAt, err := time.Parse(time.RFC3339, art.PublishedAt)
			if err != nil {
				publishedAt = time.Now()
			}
			if publishedAt.Before(windowStart) {
				continue
			}
			if !a.scorer.Relevant(art.Title, topics) {
				continue
			}

			label := art.Source.Name
			if label == "" {
				label = sourceName
			}

			items = append(items, news.Item{
				Title:          art.Title,
				Summary:        a.summarize(art),
				URL:            art.URL,
				SourceLabel:    label,
				PublishedAt:    publishedAt,
				RelevanceScore: a.scorer.Score(art.Title, topics),
			})
			count++
		}
	}

	return items, nil
}

// search runs a single everything query.
func (a *Adapter) search(ctx context.Context, keyword string, windowStart time.Time) ([]article, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	q.Set("from", windowStart.UTC().Format("2006-01-02"))

	reqURL := fmt.Sprintf("%s/v2/everything?%s", a.baseURL, q.Encode())
	body, err := infra.DoGet(ctx, a.client, reqURL, map[string]string{
		"Accept":    "application/json",
		"X-Api-Key": a.apiKey,
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp everythingResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("upstream status %s: %s", resp.Status, resp.Message)
	}
	return resp.Articles, nil
}

// summarize delegates to the configured summarizer, falling back to the
// article description when no summarizer is set or it fails.
func (a *Adapter) summarize(art article) string {
	if a.summarizer == nil {
		return art.Description
	}
	summary, err := a.summarizer.Summarize(art.Title, art.Description, art.Content)
	if err != nil || summary == "" {
		return art.Description
	}
	return summary
}
