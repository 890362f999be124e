package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Summarizer rewrites article blurbs into short newsletter summaries using
// a chat-completion provider. It satisfies the news package's Summarizer
// interface; callers fall back to the raw description when it errors.
type Summarizer struct {
	provider Provider
	timeout  time.Duration
}

// NewSummarizer creates a summarizer over the given provider.
func NewSummarizer(provider Provider) *Summarizer {
	return &Summarizer{
		provider: provider,
		timeout:  20 * time.Second,
	}
}

// Summarize produces a one- or two-sentence summary of an article.
func (s *Summarizer) Summarize(title, description, rawContent string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Summarize this news article in one or two plain sentences for a newsletter. Do not editorialize.\n\nTitle: %s\nDescription: %s\nContent: %s",
		title, description, rawContent,
	)

	resp, err := s.provider.Chat(ctx, []Message{
		{Role: RoleSystem, Content: "You are a concise news editor."},
		{Role: RoleUser, Content: prompt},
	}, &ChatOptions{Temperature: 0.3, MaxTokens: 120})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("llm: empty summary")
	}
	return summary, nil
}
