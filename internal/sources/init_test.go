package sources

import (
	"testing"

	"github.com/harshapps/newsletter-agent/internal/config"
	"github.com/harshapps/newsletter-agent/internal/news"
)

func TestRegisterAllWithoutCredentials(t *testing.T) {
	cfg := &config.Config{}
	reg, err := RegisterAll(cfg, news.NewScorer(nil), nil)
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	names := reg.Names()
	want := []string{"Yahoo Finance", "RSS Feeds", "Reddit", "Hacker News"}
	if len(names) != len(want) {
		t.Fatalf("expected %d sources, got %v", len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("position %d: expected %s, got %s", i, name, names[i])
		}
	}
}

func TestRegisterAllWithNewsAPIKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.News.NewsAPIKey = "test-key"

	reg, err := RegisterAll(cfg, news.NewScorer(nil), nil)
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	if _, err := reg.Get("NewsAPI"); err != nil {
		t.Errorf("expected NewsAPI registered when credentialed: %v", err)
	}
	if len(reg.Names()) != 5 {
		t.Errorf("expected 5 sources, got %v", reg.Names())
	}
}
