// Package source defines the adapter abstraction for external news sources.
// Each adapter fetches and normalizes items from one upstream (ticker news,
// a link aggregator, syndication feeds, ...) behind a uniform interface, and
// a central registry lets the aggregation coordinator treat them all alike.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/harshapps/newsletter-agent/internal/news"
)

// Credential describes a credential an adapter needs to operate.
type Credential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "NewsAPI key from newsapi.org"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "NEWS_API_KEY"
}

// Info holds metadata about a registered source adapter. Name is the
// user-facing label ("Yahoo Finance", "Reddit", ...) used both for
// single-source routing and in a result's SourcesUsed.
type Info struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Website     string       `json:"website"`
	Credentials []Credential `json:"credentials"`
}

// Source is the interface every news source adapter implements.
//
// Fetch never propagates partial upstream failures: a network error or a
// malformed response on one sub-fetch is logged inside the adapter and
// simply contributes zero items. A returned error means the adapter as a
// whole could not run (usually context cancellation); the coordinator
// isolates it from the other adapters either way.
type Source interface {
	// Info returns metadata about this adapter.
	Info() Info

	// Enabled reports whether the adapter considers itself relevant to
	// the requested topics. Automatic source selection invokes only
	// enabled adapters; single-source routing bypasses this gate.
	Enabled(topics []string) bool

	// Fetch retrieves items fresh within [windowStart, now] that match
	// the requested topics, normalized and capped by the adapter.
	Fetch(ctx context.Context, topics []string, windowStart time.Time) ([]news.Item, error)
}

// ErrNotFound is returned when a requested source name is not registered.
type ErrNotFound struct {
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("news source %q not found", e.Name)
}
