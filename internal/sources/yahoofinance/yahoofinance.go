// Package yahoofinance implements the Yahoo Finance news source adapter.
// It queries Yahoo's public search API for company news on a small set of
// reliable tickers, no API key required.
//
// Yahoo's news coverage skews financial, so the adapter only considers
// itself relevant to finance-adjacent topics. It is also the one adapter
// that never comes back empty: when no fresh relevant items are found it
// returns evergreen system placeholders so a newsletter always has content.
package yahoofinance

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
	sourceName     = "Yahoo Finance"
	defaultBaseURL = "https://query1.finance.yahoo.com"

	// maxPerTicker limits how many items each ticker contributes.
	maxPerTicker = 2
)

// financeTopics gates automatic selection of this adapter.
var financeTopics = map[string]bool{
	"stocks":   true,
	"finance":  true,
	"business": true,
	"economy":  true,
	"market":   true,
}

// Adapter implements source.Source for Yahoo Finance company news.
type Adapter struct {
	baseURL string
	client  *http.Client
	limiter *infra.RateLimiter
	scorer  *news.Scorer
	tickers []string
}

// New creates a Yahoo Finance adapter querying the given tickers.
// An empty ticker list falls back to a small set of reliable symbols.
func New(scorer *news.Scorer, tickers []string) *Adapter {
	if len(tickers) == 0 {
		tickers = []string{"AAPL", "GOOGL", "MSFT"}
	}
	return &Adapter{
		baseURL: defaultBaseURL,
		client:  infra.NewHTTPClient(15 * time.Second),
		limiter: infra.NewRateLimiter(2, time.Second),
		scorer:  scorer,
		tickers: tickers,
	}
}

// Info returns metadata about this adapter.
func (a *Adapter) Info() source.Info {
	return source.Info{
		Name:        sourceName,
		Description: "Company news for tracked tickers via Yahoo Finance's public search API",
		Website:     "https://finance.yahoo.com",
		Credentials: nil,
	}
}

// Enabled reports whether any requested topic is finance-adjacent.
func (a *Adapter) Enabled(topics []string) bool {
	for _, t := range topics {
		if financeTopics[t] {
			return true
		}
	}
	return false
}

// searchResponse mirrors the /v1/finance/search payload, news section only.
type searchResponse struct {
	News []newsEntry `json:"news"`
}

type newsEntry struct {
	Title               string `json:"title"`
	Link                string `json:"link"`
	Summary             string `json:"summary"`
	ProviderPublishTime int64  `json:"providerPublishTime"`
}

// Fetch queries each configured ticker and collects fresh, relevant items.
// Per-ticker failures are logged and skipped. When nothing survives the
// filters the evergreen fallback items are returned instead, so this
// adapter's contribution is never empty.
func (a *Adapter) Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error) {
	var items []news.Item

	for _, ticker := range a.tickers {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		ticked, err := a.fetchTicker(ctx, ticker, topics, windowStart)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[yahoofinance] fetch %s: %v", ticker, err)
			continue
		}
		items = append(items, ticked...)
	}

	if len(items) == 0 {
		return fallbackItems(), nil
	}
	return items, nil
}

// fetchTicker queries the search API for a single ticker.
func (a *Adapter) fetchTicker(ctx context.Context, ticker string, topics []string, windowStart time.Time) ([]news.Item, error) {
	url := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=5", a.baseURL, ticker)
	body, err := infra.DoGet(ctx, a.client, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp searchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	var items []news.Item
	for _, n := range resp.News {
		if len(items) >= maxPerTicker {
			break
		}
		if n.Title == "" {
			continue
		}

		publishedAt := time.Now()
		if n.ProviderPublishTime > 0 {
			publishedAt = time.Unix(n.ProviderPublishTime, 0)
		}
		if publishedAt.Before(windowStart) {
			continue
		}
		if !a.scorer.Relevant(n.Title, topics) {
			continue
		}

		items = append(items, news.Item{
			Title:          n.Title,
			Summary:        truncate(n.Summary, 200),
			URL:            n.Link,
			SourceLabel:    fmt.Sprintf("%s - %s", sourceName, ticker),
			PublishedAt:    publishedAt,
			RelevanceScore: a.scorer.Score(n.Title, topics),
		})
	}
	return items, nil
}

// fallbackItems returns the evergreen placeholders served when no fresh
// ticker news survives the filters.
func fallbackItems() []news.Item {
	now := time.Now()
	return []news.Item{
		{
			Title:          "Technology Market Update",
			Summary:        "Stay tuned for the latest technology news and market updates. Our AI is working to bring you the most relevant stories.",
			URL:            "",
			SourceLabel:    "System - Fallback",
			PublishedAt:    now,
			RelevanceScore: 0.8,
		},
		{
			Title:          "AI and Innovation News",
			Summary:        "Discover the latest developments in artificial intelligence, machine learning, and technological innovation.",
			URL:            "",
			SourceLabel:    "System - Fallback",
			PublishedAt:    now,
			RelevanceScore: 0.9,
		},
	}
}

// truncate shortens s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}
