// Package agent orchestrates the newsletter pipeline: aggregate news for a
// recipient's topics, render the newsletter, deliver it, and record the
// outcome. The API server and the scheduler both drive this one pipeline.
package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/harshapps/newsletter-agent/internal/mailer"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/newsletter"
	"github.com/harshapps/newsletter-agent/internal/source"
	"github.com/harshapps/newsletter-agent/internal/store"
)

// Agent wires the aggregation, generation, delivery, and persistence
// stages. mail and db may be nil; the affected stages are skipped.
type Agent struct {
	aggregator *source.Aggregator
	generator  *newsletter.Generator
	mail       *mailer.Mailer
	db         *store.Store
}

// New creates an agent. mail and db may be nil.
func New(aggregator *source.Aggregator, generator *newsletter.Generator, mail *mailer.Mailer, db *store.Store) *Agent {
	return &Agent{
		aggregator: aggregator,
		generator:  generator,
		mail:       mail,
		db:         db,
	}
}

// Aggregator exposes the underlying aggregator for direct news queries.
func (a *Agent) Aggregator() *source.Aggregator { return a.aggregator }

// GenerateContent aggregates news and renders a newsletter without sending
// or persisting anything.
func (a *Agent) GenerateContent(ctx context.Context, email string, topics []string, preferred string) (*newsletter.Newsletter, *news.Result, error) {
	result, err := a.aggregator.GetNews(ctx, topics, preferred)
	if err != nil {
		return nil, nil, fmt.Errorf("agent: aggregate: %w", err)
	}

	nl, err := a.generator.Generate(ctx, email, topics, result)
	if err != nil {
		return nil, nil, fmt.Errorf("agent: generate: %w", err)
	}
	return nl, result, nil
}

// Deliver runs the full pipeline for one recipient: aggregate, render,
// send, persist. Without a mailer the newsletter is generated and stored
// but not sent.
func (a *Agent) Deliver(ctx context.Context, email string, topics []string, preferred string) (*newsletter.Newsletter, error) {
	nl, result, err := a.GenerateContent(ctx, email, topics, preferred)
	if err != nil {
		a.logOutcome(email, "generate", err)
		return nil, err
	}
	a.logOutcome(email, "generate", nil)

	record := a.persist(nl, result)

	if a.mail != nil {
		if err := a.mail.SendNewsletter(nl); err != nil {
			a.logOutcome(email, "send", err)
			return nl, fmt.Errorf("agent: deliver: %w", err)
		}
		a.logOutcome(email, "send", nil)
		if record != nil {
			if err := a.db.MarkSent(record.ID); err != nil {
				log.Printf("[agent] mark sent: %v", err)
			}
		}
	}

	return nl, nil
}

// DeliverAll runs scheduled delivery for every active subscriber. Errors
// are per-recipient: one failing mailbox never blocks the rest. Returns
// the number of successful deliveries.
func (a *Agent) DeliverAll(ctx context.Context) int {
	if a.db == nil {
		log.Printf("[agent] scheduled delivery skipped: no database configured")
		return 0
	}

	subs, err := a.db.ActiveSubscribers()
	if err != nil {
		log.Printf("[agent] scheduled delivery: %v", err)
		return 0
	}

	sent := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			return sent
		}
		if _, err := a.Deliver(ctx, sub.Email, sub.Topics, sub.PreferredSource); err != nil {
			log.Printf("[agent] deliver to %s: %v", sub.Email, err)
			continue
		}
		sent++
	}
	log.Printf("[agent] scheduled delivery complete: %d/%d sent", sent, len(subs))
	return sent
}

// persist stores the rendered newsletter when a database is configured.
func (a *Agent) persist(nl *newsletter.Newsletter, result *news.Result) *store.Newsletter {
	if a.db == nil {
		return nil
	}
	record := &store.Newsletter{
		Email:            nl.Email,
		Subject:          nl.Subject,
		Content:          nl.Content,
		HTMLContent:      nl.HTMLContent,
		Topics:           nl.Topics,
		SourcesUsed:      result.SourcesUsed,
		NewsCount:        nl.NewsCount,
		GenerationMethod: nl.GenerationMethod,
		GeneratedAt:      nl.GeneratedAt,
	}
	if err := a.db.SaveNewsletter(record); err != nil {
		log.Printf("[agent] persist newsletter: %v", err)
		return nil
	}
	return record
}

func (a *Agent) logOutcome(email, operation string, err error) {
	if a.db == nil {
		return
	}
	if err != nil {
		a.db.Log(email, operation, "error", err.Error())
		return
	}
	a.db.Log(email, operation, "ok", "")
}
