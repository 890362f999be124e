// Package reddit implements the Reddit news source adapter. It reads the
// hot listing of topic-mapped subreddits through the public JSON endpoints,
// no API key required. Reddit rejects anonymous default user agents, so the
// shared HTTP helper's User-Agent header matters here.
package reddit

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
	sourceName     = "Reddit"
	defaultBaseURL = "https://www.reddit.com"

	// maxItems caps the adapter's total contribution.
	maxItems = 10

	// listingLimit is how many hot posts to request per subreddit.
	listingLimit = 15
)

// DefaultSubreddits maps topics to boards; "default" is the catch-all used
// for topics with no dedicated board.
var DefaultSubreddits = map[string]string{
	"technology": "technology",
	"business":   "business",
	"finance":    "finance",
	"science":    "science",
	"politics":   "politics",
	"sports":     "sports",
	"default":    "news",
}

// Adapter implements source.Source for Reddit hot listings.
type Adapter struct {
	baseURL    string
	client     *http.Client
	scorer     *news.Scorer
	subreddits map[string]string
}

// New creates a Reddit adapter over the given topic→subreddit table.
// A nil table falls back to DefaultSubreddits.
func New(scorer *news.Scorer, subreddits map[string]string) *Adapter {
	if subreddits == nil {
		subreddits = DefaultSubreddits
	}
	return &Adapter{
		baseURL:    defaultBaseURL,
		client:     infra.NewHTTPClient(15 * time.Second),
		scorer:     scorer,
		subreddits: subreddits,
	}
}

// Info returns metadata about this adapter.
func (a *Adapter) Info() source.Info {
	return source.Info{
		Name:        sourceName,
		Description: "Hot posts from topic-mapped subreddits via the public JSON listings",
		Website:     "https://www.reddit.com",
		Credentials: nil,
	}
}

// Enabled always reports true: the catch-all board serves any topic.
func (a *Adapter) Enabled(topics []string) bool {
	return true
}

// listing mirrors the subreddit hot.json payload, fields we use only.
type listing struct {
	Data struct {
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Data post `json:"data"`
}

type post struct {
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}

// Fetch reads the hot listing of each topic's subreddit and collects fresh,
// relevant posts up to the adapter cap. Per-subreddit failures are logged
// and skipped.
func (a *Adapter) Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error) {
	var items []news.Item
	queried := map[string]bool{}

	for _, topic := range topics {
		if len(items) >= maxItems {
			break
		}

		sub, ok := a.subreddits[topic]
		if !ok {
			sub = a.subreddits["default"]
		}
		if sub == "" || queried[sub] {
			continue
		}
		queried[sub] = true

		posts, err := a.fetchSubreddit(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[reddit] fetch r/%s: %v", sub, err)
			continue
		}

		for _, p := range posts {
			if len(items) >= maxItems {
				break
			}
			if p.Title == "" || p.Stickied {
				continue
			}

			publishedAt := time.Unix(int64(p.CreatedUTC), 0)
			if publishedAt.Before(windowStart) {
				continue
			}
			if !a.scorer.Relevant(p.Title, topics) {
				continue
			}

			url := p.URL
			if url == "" && p.Permalink != "" {
				url = defaultBaseURL + p.Permalink
			}

			items = append(items, news.Item{
				Title:          p.Title,
				Summary:        truncate(p.SelfText, 200),
				URL:            url,
				SourceLabel:    fmt.Sprintf("Reddit - r/%s", p.Subreddit),
				PublishedAt:    publishedAt,
				RelevanceScore: a.scorer.Score(p.Title, topics),
			})
		}
	}

	return items, nil
}

// fetchSubreddit reads one board's hot listing.
func (a *Adapter) fetchSubreddit(ctx context.Context, sub string) ([]post, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", a.baseURL, sub, listingLimit)
	body, err := infra.DoGet(ctx, a.client, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var l listing
	if err := json.NewDecoder(body).Decode(&l); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	posts := make([]post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}
