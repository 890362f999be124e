// Package scheduler runs daily newsletter delivery on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/harshapps/newsletter-agent/internal/agent"
)

// Scheduler owns the cron loop driving scheduled delivery.
type Scheduler struct {
	cron  *cron.Cron
	agent *agent.Agent
}

// New creates a scheduler delivering on the given cron spec
// (standard 5-field format, e.g. "0 9 * * *" for 09:00 daily).
func New(spec string, a *agent.Agent) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, agent: a}

	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[scheduler] started")
}

// Stop halts the cron loop and waits for a running delivery to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Printf("[scheduler] stopped")
}

func (s *Scheduler) run() {
	log.Printf("[scheduler] delivery run starting")
	s.agent.DeliverAll(context.Background())
}
