package source

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harshapps/newsletter-agent/internal/infra"
	"github.com/harshapps/newsletter-agent/internal/news"
)

// AutoSource is the preferred-source value that selects automatic
// aggregation across all gated adapters.
const AutoSource = "Auto"

// trendingTTL is how long a computed trending list stays cached; each
// computation is a full fan-out over the adapters.
const trendingTTL = 15 * time.Minute

// Aggregator fetches and merges news from registered adapters concurrently.
type Aggregator struct {
	registry   *Registry
	scorer     *news.Scorer
	cache      *infra.Cache
	hasNewsAPI bool
}

// NewAggregator creates an aggregator over the given registry.
func NewAggregator(registry *Registry, scorer *news.Scorer) *Aggregator {
	_, err := registry.Get("NewsAPI")
	return &Aggregator{
		registry:   registry,
		scorer:     scorer,
		cache:      infra.NewCache(trendingTTL),
		hasNewsAPI: err == nil,
	}
}

// Registry returns the underlying adapter registry.
func (a *Aggregator) Registry() *Registry { return a.registry }

// GetNews fetches, merges, and ranks news for the requested topics.
//
// preferred selects single-source mode: when it names a registered adapter,
// only that adapter is queried and its relevance gate is bypassed. Empty or
// AutoSource fans out over every adapter whose gate admits the topics.
// Failing adapters contribute zero items and never abort the rest; the
// returned error is reserved for context cancellation.
func (a *Aggregator) GetNews(ctx context.Context, topics []string, preferred string) (*news.Result, error) {
	windowStart := time.Now().Add(-news.Window)

	var adapters []Source
	if preferred != "" && preferred != AutoSource {
		s, err := a.registry.Get(preferred)
		if err != nil {
			log.Printf("[aggregator] %v", err)
			return a.emptyResult(fmt.Sprintf("News source '%s' is not available", preferred)), nil
		}
		adapters = []Source{s}
	} else {
		adapters = a.registry.Enabled(topics)
	}

	// Each adapter writes into its own slot so SourcesUsed can be assembled
	// in registration order regardless of which fetch finishes first.
	fetchedBy := make([][]news.Item, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range adapters {
		i, s := i, s
		g.Go(func() error {
			fetched, err := s.Fetch(gctx, topics, windowStart)
			if err != nil {
				log.Printf("[aggregator] %s: %v", s.Info().Name, err)
				return nil // non-fatal
			}
			fetchedBy[i] = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var (
		items []news.Item
		used  []string
	)
	for i, s := range adapters {
		if len(fetchedBy[i]) == 0 {
			continue
		}
		items = append(items, fetchedBy[i]...)
		used = append(used, s.Info().Name)
	}

	if len(items) == 0 {
		return a.unavailableResult(), nil
	}

	items = news.Dedupe(items)
	items = news.Rank(items, topics, a.scorer)
	if len(items) > news.MaxItems {
		items = items[:news.MaxItems]
	}

	return &news.Result{
		DateFetched: time.Now().Format(news.DateFetchedLayout),
		SourcesUsed: used,
		News:        items,
	}, nil
}

// TrendingTopics ranks known topics by how often their keywords appear in a
// broad sweep of current headlines. A failed sweep falls back to a static
// list rather than an error.
func (a *Aggregator) TrendingTopics(ctx context.Context) []string {
	fallback := []string{"technology", "business", "finance", "politics", "science"}

	if cached, ok := a.cache.Get("trending"); ok {
		return cached.([]string)
	}

	result, err := a.GetNews(ctx, []string{"technology", "business", "politics", "science"}, "")
	if err != nil {
		return fallback
	}

	counts := map[string]int{}
	for _, item := range result.News {
		for _, topic := range a.scorer.Topics() {
			for _, kw := range a.scorer.Keywords(topic) {
				if containsFold(item.Title, kw) {
					counts[topic]++
				}
			}
		}
	}
	if len(counts) == 0 {
		return fallback
	}

	topics := make([]string, 0, len(counts))
	for t := range counts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > 5 {
		topics = topics[:5]
	}
	a.cache.Set("trending", topics)
	return topics
}

// unavailableResult is returned when every adapter came back empty. The
// items are system notices so the newsletter still has a body, and the
// setup hint is included only while NewsAPI is unconfigured.
func (a *Aggregator) unavailableResult() *news.Result {
	now := time.Now()
	items := []news.Item{
		{
			Title:          "News Service Temporarily Unavailable",
			Summary:        "We're experiencing issues fetching the latest news. Please try again later or check your internet connection.",
			SourceLabel:    "System - Notice",
			PublishedAt:    now,
			RelevanceScore: 1.0,
		},
	}
	if !a.hasNewsAPI {
		items = append(items, news.Item{
			Title:          "Setup NewsAPI for Better News Coverage",
			Summary:        "Get a free API key from newsapi.org to unlock keyword search across thousands of outlets.",
			SourceLabel:    "System - Setup Guide",
			PublishedAt:    now,
			RelevanceScore: 0.9,
		})
	}
	return &news.Result{
		DateFetched: now.Format(news.DateFetchedLayout),
		SourcesUsed: []string{news.SentinelNoNews},
		News:        items,
	}
}

// emptyResult is returned for an unknown preferred source.
func (a *Aggregator) emptyResult(reason string) *news.Result {
	now := time.Now()
	return &news.Result{
		DateFetched: now.Format(news.DateFetchedLayout),
		SourcesUsed: []string{news.SentinelNoNews},
		News: []news.Item{{
			Title:          "Requested News Source Unavailable",
			Summary:        reason,
			SourceLabel:    "System - Notice",
			PublishedAt:    now,
			RelevanceScore: 1.0,
		}},
	}
}

// containsFold is a case-insensitive substring test.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
