package scheduler

import (
	"testing"

	"github.com/harshapps/newsletter-agent/internal/agent"
)

func TestNewValidatesSpec(t *testing.T) {
	a := agent.New(nil, nil, nil, nil)

	if _, err := New("0 9 * * *", a); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
	if _, err := New("not a cron spec", a); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestStartStop(t *testing.T) {
	a := agent.New(nil, nil, nil, nil)
	s, err := New("0 9 * * *", a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	s.Stop()
}
