// Package sources wires all concrete news source adapters into a registry.
package sources

import (
	"github.com/harshapps/newsletter-agent/internal/config"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/source"
	"github.com/harshapps/newsletter-agent/internal/sources/hackernews"
	"github.com/harshapps/newsletter-agent/internal/sources/newsapi"
	"github.com/harshapps/newsletter-agent/internal/sources/reddit"
	"github.com/harshapps/newsletter-agent/internal/sources/rssfeeds"
	"github.com/harshapps/newsletter-agent/internal/sources/yahoofinance"
)

// RegisterAll creates a registry holding every available adapter.
// Registration order is the invocation order for automatic aggregation.
// Adapters that require credentials are only registered when their
// credential is configured. summarizer may be nil.
func RegisterAll(cfg *config.Config, scorer *news.Scorer, summarizer news.Summarizer) (*source.Registry, error) {
	reg := source.NewRegistry()

	// --- Yahoo Finance (free, no API key) ---
	if err := reg.Register(yahoofinance.New(scorer, cfg.News.Tickers)); err != nil {
		return nil, err
	}

	// --- NewsAPI (requires API key) ---
	if cfg.News.NewsAPIKey != "" {
		if err := reg.Register(newsapi.New(cfg.News.NewsAPIKey, scorer, summarizer)); err != nil {
			return nil, err
		}
	}

	// --- RSS feeds (free) ---
	if err := reg.Register(rssfeeds.New(cfg.News.Feeds, cfg.News.InsecureFeeds)); err != nil {
		return nil, err
	}

	// --- Reddit (free) ---
	if err := reg.Register(reddit.New(scorer, cfg.News.Subreddits)); err != nil {
		return nil, err
	}

	// --- Hacker News (free) ---
	if err := reg.Register(hackernews.New(scorer)); err != nil {
		return nil, err
	}

	return reg, nil
}
