package news

import "strings"

// DefaultTopicKeywords maps each supported topic to the keywords that count
// toward its relevance score. The table is configuration: config loading may
// replace it wholesale without touching the scoring logic.
var DefaultTopicKeywords = map[string][]string{
	"technology":    {"tech", "software", "AI", "artificial intelligence", "startup", "innovation"},
	"business":      {"business", "company", "corporate", "market", "economy"},
	"finance":       {"finance", "stocks", "investment", "trading", "market"},
	"politics":      {"politics", "government", "policy", "election"},
	"science":       {"science", "research", "study", "discovery"},
	"health":        {"health", "medical", "medicine", "healthcare"},
	"sports":        {"sports", "football", "basketball", "baseball", "soccer"},
	"entertainment": {"entertainment", "movie", "music", "celebrity"},
}

// Scorer computes topical relevance of a title against requested topics.
// It is pure and deterministic: same inputs, same score, no side effects.
type Scorer struct {
	keywords map[string][]string
}

// NewScorer creates a scorer with the given topic→keyword table.
// A nil table falls back to DefaultTopicKeywords.
func NewScorer(keywords map[string][]string) *Scorer {
	if keywords == nil {
		keywords = DefaultTopicKeywords
	}
	return &Scorer{keywords: keywords}
}

// Score returns the relevance of title to the requested topics: +1.0 for
// each topic name appearing in the title (case-insensitive substring) and
// +0.5 for each of that topic's keywords appearing, capped at 5.0.
func (s *Scorer) Score(title string, topics []string) float64 {
	score := 0.0
	titleLower := strings.ToLower(title)

	for _, topic := range topics {
		if strings.Contains(titleLower, strings.ToLower(topic)) {
			score += 1.0
		}
		for _, kw := range s.keywords[topic] {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				score += 0.5
			}
		}
	}

	if score > 5.0 {
		score = 5.0
	}
	return score
}

// Relevant reports whether the title matches any requested topic, either by
// topic name or by one of its configured keywords. Adapters use this as the
// pre-emit filter.
func (s *Scorer) Relevant(title string, topics []string) bool {
	titleLower := strings.ToLower(title)

	for _, topic := range topics {
		if strings.Contains(titleLower, strings.ToLower(topic)) {
			return true
		}
		for _, kw := range s.keywords[topic] {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// PrimaryKeyword returns the first configured keyword for a topic, or the
// topic itself when the table has no entry. The keyword-search adapter uses
// it as the query term.
func (s *Scorer) PrimaryKeyword(topic string) string {
	if kws := s.keywords[topic]; len(kws) > 0 {
		return kws[0]
	}
	return topic
}

// Topics returns the topic names known to the scorer, for trending analysis.
func (s *Scorer) Topics() []string {
	names := make([]string, 0, len(s.keywords))
	for t := range s.keywords {
		names = append(names, t)
	}
	return names
}

// Keywords returns the configured keywords for a topic.
func (s *Scorer) Keywords(topic string) []string {
	return s.keywords[topic]
}
