package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdulachik/sepsisx/internal/job"
)

// Invoker runs one job invocation.
type Invoker interface {
	Handle(ctx context.Context, event job.Event) (job.Response, error)
}

// Scheduler fires each trigger at its daily time, for running the bot
// outside of EventBridge.
type Scheduler struct {
	invoker  Invoker
	triggers []Trigger
	timeout  time.Duration
	health   *Health
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

// Config holds scheduler configuration.
type Config struct {
	Invoker  Invoker
	Triggers []Trigger
	// Timeout bounds each invocation, as the function timeout does when deployed.
	Timeout time.Duration
}

// New creates a new scheduler.
func New(cfg Config) (*Scheduler, error) {
	if len(cfg.Triggers) == 0 {
		return nil, fmt.Errorf("no triggers configured")
	}
	for _, t := range cfg.Triggers {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Scheduler{
		invoker:  cfg.Invoker,
		triggers: cfg.Triggers,
		timeout:  timeout,
		health:   NewHealth(),
		now:      time.Now,
		after:    time.After,
	}, nil
}

// next returns the trigger that fires soonest after now.
func (s *Scheduler) next(now time.Time) (Trigger, time.Time) {
	best := s.triggers[0]
	at := best.Next(now)
	for _, t := range s.triggers[1:] {
		if n := t.Next(now); n.Before(at) {
			best, at = t, n
		}
	}
	return best, at
}

// Run starts the scheduler main loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, t := range s.triggers {
		slog.Info("scheduled trigger",
			"name", t.Name,
			"post_type", t.PostType,
			"next", t.Next(s.now()),
		)
	}

	for {
		trigger, at := s.next(s.now())
		wait := at.Sub(s.now())
		slog.Debug("waiting for trigger", "name", trigger.Name, "at", at, "wait", wait)

		select {
		case <-ctx.Done():
			slog.Info("scheduler shutting down")
			return ctx.Err()

		case <-s.after(wait):
			s.Fire(ctx, trigger)
		}
	}
}

// Fire invokes the job once for trigger and records the outcome.
func (s *Scheduler) Fire(ctx context.Context, trigger Trigger) job.Response {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	slog.Debug("firing trigger", "name", trigger.Name, "post_type", trigger.PostType)

	resp, err := s.invoker.Handle(ctx, trigger.Payload())
	if err != nil {
		s.health.SetUnhealthy(trigger.Name, err)
		slog.Error("trigger failed", "name", trigger.Name, "error", err)
		return resp
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := resp.DecodeBody()
		s.health.SetUnhealthy(trigger.Name, fmt.Errorf("status %d: %s", resp.StatusCode, body.Message))
		return resp
	}

	s.health.SetHealthy(trigger.Name, resp.Body)
	return resp
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}
