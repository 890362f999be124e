// Package newsletter turns aggregated news into email-ready content.
// Prose generation prefers an LLM provider when one is configured and
// always keeps a deterministic template path as fallback, so delivery
// never depends on an upstream model being reachable.
package newsletter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harshapps/newsletter-agent/internal/llm"
	"github.com/harshapps/newsletter-agent/internal/news"
)

// Generation methods recorded on produced newsletters.
const (
	MethodLLM      = "llm"
	MethodTemplate = "template"
)

// maxStories bounds how many items appear in the newsletter body.
const maxStories = 8

// Newsletter is a fully rendered newsletter ready for delivery.
type Newsletter struct {
	Email            string    `json:"email"`
	Topics           []string  `json:"topics"`
	Subject          string    `json:"subject"`
	Content          string    `json:"content"`
	HTMLContent      string    `json:"html_content"`
	GenerationMethod string    `json:"generation_method"`
	NewsCount        int       `json:"news_count"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Generator renders newsletters from aggregated news. provider may be nil,
// in which case every newsletter uses the template path.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a generator. provider may be nil.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate renders a newsletter for one recipient. An LLM failure falls
// back to the template path rather than propagating.
func (g *Generator) Generate(ctx context.Context, email string, topics []string, result *news.Result) (*Newsletter, error) {
	if result == nil {
		return nil, fmt.Errorf("newsletter: nil news result")
	}

	nl := &Newsletter{
		Email:       email,
		Topics:      topics,
		NewsCount:   len(result.News),
		GeneratedAt: time.Now().UTC(),
	}

	if g.provider != nil {
		subject, content, err := g.generateWithLLM(ctx, topics, result)
		if err == nil {
			nl.Subject = subject
			nl.Content = content
			nl.GenerationMethod = MethodLLM
		} else {
			log.Printf("[newsletter] llm generation failed, using template: %v", err)
		}
	}

	if nl.GenerationMethod == "" {
		nl.Subject = defaultSubject(topics)
		nl.Content = renderText(topics, result)
		nl.GenerationMethod = MethodTemplate
	}

	html, err := renderHTML(nl.Subject, topics, result)
	if err != nil {
		return nil, fmt.Errorf("newsletter: render html: %w", err)
	}
	nl.HTMLContent = html

	return nl, nil
}

// generateWithLLM asks the provider for newsletter prose over the fetched
// headlines. The model writes the body; the story list itself stays as
// fetched so the newsletter never invents articles.
func (g *Generator) generateWithLLM(ctx context.Context, topics []string, result *news.Result) (subject, content string, err error) {
	var sb strings.Builder
	for i, item := range result.News {
		if i >= maxStories {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%s): %s\n", i+1, item.Title, item.SourceLabel, item.Summary)
	}

	prompt := fmt.Sprintf(
		"Write a short daily email newsletter covering these topics: %s.\n"+
			"Start with a one-line subject prefixed 'Subject:'. Then a brief greeting, "+
			"a short intro paragraph, the stories below with one sentence of context each, "+
			"and a sign-off. Use only the stories provided.\n\nStories:\n%s",
		strings.Join(topics, ", "), sb.String(),
	)

	resp, err := g.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a newsletter editor writing clear, friendly daily digests."},
		{Role: llm.RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return "", "", err
	}

	subject, content = splitSubject(resp.Content)
	if content == "" {
		return "", "", fmt.Errorf("empty newsletter body")
	}
	if subject == "" {
		subject = defaultSubject(topics)
	}
	return subject, content, nil
}

// splitSubject extracts a "Subject:" line from generated prose.
func splitSubject(text string) (subject, body string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var bodyLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if subject == "" {
			lower := strings.ToLower(trimmed)
			if strings.HasPrefix(lower, "subject:") {
				subject = strings.Trim(strings.TrimSpace(trimmed[len("subject:"):]), `"'`)
				continue
			}
		}
		bodyLines = append(bodyLines, line)
	}
	return subject, strings.TrimSpace(strings.Join(bodyLines, "\n"))
}

func defaultSubject(topics []string) string {
	if len(topics) == 0 {
		return "Your Daily News Summary"
	}
	return fmt.Sprintf("Your Daily News Summary - %s", strings.Join(topics, ", "))
}

// renderText produces the deterministic plain-text newsletter body.
func renderText(topics []string, result *news.Result) string {
	var sb strings.Builder

	sb.WriteString("Good morning!\n\n")
	if len(topics) > 0 {
		fmt.Fprintf(&sb, "Here's your personalized news summary for today covering: %s\n\n", strings.Join(topics, ", "))
	} else {
		sb.WriteString("Here's your personalized news summary for today.\n\n")
	}

	if len(result.News) > 0 {
		sb.WriteString("Top Stories:\n\n")
		for i, item := range result.News {
			if i >= maxStories {
				break
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Title)
			if item.Summary != "" {
				fmt.Fprintf(&sb, "   %s\n", item.Summary)
			}
			fmt.Fprintf(&sb, "   Source: %s\n\n", item.SourceLabel)
		}
	} else {
		sb.WriteString("No news articles found for your topics today.\n\n")
	}

	sb.WriteString("Stay informed and have a great day!\n\nBest regards,\nYour Newsletter Agent")
	return sb.String()
}
