package news

import (
	"testing"
	"time"
)

// ── Scorer ──

func TestScoreTopicAndKeywords(t *testing.T) {
	s := NewScorer(nil)

	cases := []struct {
		title  string
		topics []string
		want   float64
	}{
		// Topic name match alone.
		{"Technology sector update", []string{"technology"}, 1.5}, // "technology" +1.0, keyword "tech" +0.5
		// Keywords only, 0.5 each.
		{"AI startup raises funding", []string{"technology"}, 1.0},
		// No match.
		{"Gardening tips for spring", []string{"technology"}, 0.0},
		// Multiple topics accumulate.
		{"Business market analysis", []string{"business", "finance"}, 2.5},
		// Unknown topic scores only on its name.
		{"Cricket world cup final", []string{"cricket"}, 1.0},
		// Empty topics.
		{"Anything at all", nil, 0.0},
	}
	for _, tc := range cases {
		if got := s.Score(tc.title, tc.topics); got != tc.want {
			t.Errorf("Score(%q, %v): got %.1f, want %.1f", tc.title, tc.topics, got, tc.want)
		}
	}
}

func TestScoreCapsAtFive(t *testing.T) {
	s := NewScorer(nil)
	title := "technology business finance politics science health sports entertainment tech software market economy"
	topics := []string{"technology", "business", "finance", "politics", "science", "health", "sports", "entertainment"}
	if got := s.Score(title, topics); got != 5.0 {
		t.Errorf("expected cap at 5.0, got %.1f", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(nil)
	first := s.Score("AI startup raises funding", []string{"technology"})
	for i := 0; i < 10; i++ {
		if got := s.Score("AI startup raises funding", []string{"technology"}); got != first {
			t.Fatalf("score changed between calls: %.1f vs %.1f", got, first)
		}
	}
}

func TestRelevant(t *testing.T) {
	s := NewScorer(nil)
	if !s.Relevant("New software release", []string{"technology"}) {
		t.Error("keyword match must be relevant")
	}
	if !s.Relevant("Technology roundup", []string{"technology"}) {
		t.Error("topic name match must be relevant")
	}
	if s.Relevant("Gardening tips", []string{"technology"}) {
		t.Error("unrelated title must not be relevant")
	}
}

func TestPrimaryKeyword(t *testing.T) {
	s := NewScorer(nil)
	if got := s.PrimaryKeyword("technology"); got != "tech" {
		t.Errorf("expected tech, got %s", got)
	}
	if got := s.PrimaryKeyword("underwater basket weaving"); got != "underwater basket weaving" {
		t.Errorf("unknown topic must fall back to itself, got %s", got)
	}
}

func TestCustomKeywordTable(t *testing.T) {
	s := NewScorer(map[string][]string{"gaming": {"console", "esports"}})
	if got := s.Score("Esports finals this weekend", []string{"gaming"}); got != 0.5 {
		t.Errorf("custom table: got %.1f, want 0.5", got)
	}
	if s.Relevant("AI startup raises funding", []string{"technology"}) {
		t.Error("custom table must fully replace the default")
	}
}

// ── Dedupe ──

func TestDedupeCaseInsensitive(t *testing.T) {
	items := []Item{
		{Title: "Big Tech News", RelevanceScore: 1.0},
		{Title: "BIG TECH NEWS", RelevanceScore: 5.0},
		{Title: "Other Story"},
	}
	got := Dedupe(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	// First occurrence wins regardless of score.
	if got[0].RelevanceScore != 1.0 {
		t.Errorf("expected first occurrence kept, got score %.1f", got[0].RelevanceScore)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	items := []Item{{Title: "A"}, {Title: "a"}, {Title: "B"}}
	once := Dedupe(items)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Errorf("dedupe must be idempotent: %d vs %d", len(once), len(twice))
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

// ── Rank ──

func TestRankByScoreThenRecency(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Title: "Low old", RelevanceScore: 1.0, PublishedAt: now.Add(-3 * time.Hour)},
		{Title: "High", RelevanceScore: 3.0, PublishedAt: now.Add(-5 * time.Hour)},
		{Title: "Low new", RelevanceScore: 1.0, PublishedAt: now.Add(-1 * time.Hour)},
	}
	got := Rank(items, []string{"technology"}, NewScorer(nil))
	want := []string{"High", "Low new", "Low old"}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("position %d: got %s, want %s", i, got[i].Title, title)
		}
	}
}

func TestRankBackfillsZeroScores(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Title: "Plain story", PublishedAt: now},
		{Title: "AI startup raises funding", PublishedAt: now},
	}
	got := Rank(items, []string{"technology"}, NewScorer(nil))
	if got[0].Title != "AI startup raises funding" {
		t.Errorf("expected scored item first, got %s", got[0].Title)
	}
	if got[0].RelevanceScore != 1.0 {
		t.Errorf("expected backfilled score 1.0, got %.1f", got[0].RelevanceScore)
	}
}

func TestRankStable(t *testing.T) {
	now := time.Now()
	// Identical score and timestamp: input order must be preserved.
	items := []Item{
		{Title: "First", RelevanceScore: 2.0, PublishedAt: now},
		{Title: "Second", RelevanceScore: 2.0, PublishedAt: now},
		{Title: "Third", RelevanceScore: 2.0, PublishedAt: now},
	}
	got := Rank(items, nil, NewScorer(nil))
	for i, title := range []string{"First", "Second", "Third"} {
		if got[i].Title != title {
			t.Errorf("position %d: got %s, want %s", i, got[i].Title, title)
		}
	}
}

// ── Item ──

func TestItemSystem(t *testing.T) {
	if !(Item{SourceLabel: "System - Fallback"}).System() {
		t.Error("System - Fallback must be system")
	}
	if !(Item{SourceLabel: "System - Notice"}).System() {
		t.Error("System - Notice must be system")
	}
	if (Item{SourceLabel: "Yahoo Finance - AAPL"}).System() {
		t.Error("real source must not be system")
	}
}
