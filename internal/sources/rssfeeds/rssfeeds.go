// Package rssfeeds implements the RSS syndication feed source adapter.
// It pulls entries from a configurable table of named feeds, querying only
// the feeds whose name matches a requested topic.
package rssfeeds

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/harshapps/newsletter-agent/internal/infra"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/source"
)

const (
	sourceName = "RSS Feeds"

	// maxPerFeed limits how many entries each feed contributes.
	maxPerFeed = 5

	// defaultScore is assigned to feed entries; syndication titles rarely
	// hit the keyword table even when the feed itself is on-topic.
	defaultScore = 0.5
)

// DefaultFeeds is the built-in feed table, keyed by feed name.
var DefaultFeeds = map[string]string{
	"tech":     "https://feeds.feedburner.com/TechCrunch",
	"business": "https://feeds.feedburner.com/businessinsider",
	"science":  "https://rss.sciencedaily.com/all.xml",
	"health":   "https://www.medicalnewstoday.com/rss.xml",
}

// Adapter implements source.Source for RSS syndication feeds.
type Adapter struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  map[string]string
	names  []string // feed names in deterministic order
}

// New creates an RSS adapter over the given feed table. A nil table falls
// back to DefaultFeeds. insecure relaxes TLS verification for this
// adapter's client only; several syndication hosts serve broken chains.
func New(feeds map[string]string, insecure bool) *Adapter {
	if feeds == nil {
		feeds = DefaultFeeds
	}
	client := infra.NewHTTPClient(30 * time.Second)
	if insecure {
		client = infra.NewInsecureHTTPClient(30 * time.Second)
	}

	names := make([]string, 0, len(feeds))
	for name := range feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Adapter{
		client: client,
		parser: gofeed.NewParser(),
		feeds:  feeds,
		names:  names,
	}
}

// Info returns metadata about this adapter.
func (a *Adapter) Info() source.Info {
	return source.Info{
		Name:        sourceName,
		Description: "Curated RSS syndication feeds for tech, business, science, and health",
		Website:     "",
		Credentials: nil,
	}
}

// Enabled always admits this adapter: the syndication feeds are the
// universal fallback in automatic mode. Topics without a matching feed
// simply fetch nothing.
func (a *Adapter) Enabled(topics []string) bool {
	return true
}

// Fetch pulls the topic-matching feeds and normalizes their entries.
// Per-feed failures are logged and skipped.
func (a *Adapter) Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error) {
	var items []news.Item

	for _, name := range a.names {
		if !feedMatches(name, topics) {
			continue
		}

		feedItems, err := a.fetchFeed(ctx, name, a.feeds[name], windowStart)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[rssfeeds] fetch %s: %v", name, err)
			continue
		}
		items = append(items, feedItems...)
	}

	return items, nil
}

// fetchFeed downloads and parses one feed.
func (a *Adapter) fetchFeed(ctx context.Context, name, url string, windowStart time.Time) ([]news.Item, error) {
	body, err := infra.DoGet(ctx, a.client, url, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := a.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var items []news.Item
	for _, entry := range feed.Items {
		if len(items) >= maxPerFeed {
			break
		}
		if entry.Title == "" {
			continue
		}

		publishedAt := entryTime(entry)
		if publishedAt.Before(windowStart) {
			continue
		}

		items = append(items, news.Item{
			Title:          entry.Title,
			Summary:        stripHTML(entry.Description),
			URL:            entry.Link,
			SourceLabel:    fmt.Sprintf("RSS - %s", name),
			PublishedAt:    publishedAt,
			RelevanceScore: defaultScore,
		})
	}
	return items, nil
}

// entryTime resolves an entry's publication time. Feeds are inconsistent
// about which date field they populate, so try them in order of reliability
// and fall back to now for feeds with no usable date at all.
func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	if entry.Published != "" {
		if t, err := time.Parse(time.RFC1123Z, entry.Published); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC1123, entry.Published); err == nil {
			return t
		}
	}
	return time.Now()
}

// feedMatches reports whether a feed name matches any requested topic by
// case-insensitive substring ("tech" matches "technology").
func feedMatches(feedName string, topics []string) bool {
	nameLower := strings.ToLower(feedName)
	for _, topic := range topics {
		topicLower := strings.ToLower(topic)
		if strings.Contains(nameLower, topicLower) || strings.Contains(topicLower, nameLower) {
			return true
		}
	}
	return false
}

// stripHTML flattens feed descriptions that arrive as HTML fragments.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
