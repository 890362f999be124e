// Package news implements the aggregation core: the item model, relevance
// scoring, deduplication, and ranking shared by every source adapter and by
// the aggregation coordinator.
package news

import "time"

// Pipeline-wide limits and sentinels.
const (
	// MaxItems bounds the ranked output of a single aggregation request.
	MaxItems = 20

	// Window is the trailing interval within which items count as fresh.
	Window = 24 * time.Hour

	// SentinelNoNews is recorded in SourcesUsed when every adapter came
	// back empty and the result carries only synthetic system items.
	SentinelNoNews = "No Recent News Available"

	// SystemPrefix marks the source label of synthetic items (fallback
	// content, notices, setup guides) that are not real news.
	SystemPrefix = "System - "

	// DateFetchedLayout is the human-readable timestamp format recorded
	// on every aggregation result.
	DateFetchedLayout = "January 2, 2006 at 3:04 PM"
)

// Item is the unit flowing through the pipeline. An adapter constructs it
// once; only RelevanceScore may be backfilled later by the ranker.
type Item struct {
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	URL            string    `json:"url"`
	SourceLabel    string    `json:"source"`
	PublishedAt    time.Time `json:"published_at"`
	RelevanceScore float64   `json:"relevance_score"`
}

// System reports whether the item is synthetic (fallback or notice content)
// rather than a real article. System items are exempt from the freshness
// window.
func (it Item) System() bool {
	return len(it.SourceLabel) >= len(SystemPrefix) && it.SourceLabel[:len(SystemPrefix)] == SystemPrefix
}

// Result is the aggregation output handed to the downstream newsletter
// generator. SourcesUsed lists contributing adapters in invocation order.
type Result struct {
	DateFetched string   `json:"date_fetched"`
	SourcesUsed []string `json:"sources_used"`
	News        []Item   `json:"news"`
}

// Summarizer produces a short summary for an article. The keyword-search
// adapter delegates to it; implementations must be safe for concurrent use.
// Callers tolerate failure by falling back to the raw description.
type Summarizer interface {
	Summarize(title, description, rawContent string) (string, error)
}
