package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdulachik/sepsisx/internal/job"
	"github.com/abdulachik/sepsisx/internal/poster"
)

// Trigger is one daily post, fired at a fixed wall-clock time in Tokyo.
type Trigger struct {
	Name        string
	PostType    poster.PostType
	Hour        int // JST
	Minute      int
	Description string
}

// DefaultTriggers returns the deployed schedule: sepsis at 10:00 JST and
// ARDS at 18:00 JST.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{
			Name:        "DailySepsisSchedule",
			PostType:    poster.PostTypeSepsis,
			Hour:        10,
			Description: "Trigger for daily X posts about sepsis at 10:00 AM JST",
		},
		{
			Name:        "DailyARDSSchedule",
			PostType:    poster.PostTypeARDS,
			Hour:        18,
			Description: "Trigger for daily X posts about ARDS at 6:00 PM JST",
		},
	}
}

// Validate checks the trigger's fields.
func (t Trigger) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("trigger name is required")
	}
	if !t.PostType.Valid() {
		return fmt.Errorf("trigger %s: %w: %q", t.Name, poster.ErrUnknownPostType, string(t.PostType))
	}
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("trigger %s: hour %d out of range", t.Name, t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("trigger %s: minute %d out of range", t.Name, t.Minute)
	}
	return nil
}

// utc returns the trigger's hour and minute in UTC. Tokyo has no DST, so the
// offset is fixed.
func (t Trigger) utc() (hour, minute int) {
	ref := time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, poster.Tokyo).UTC()
	return ref.Hour(), ref.Minute()
}

// CronExpression returns the EventBridge schedule expression in UTC.
func (t Trigger) CronExpression() string {
	hour, minute := t.utc()
	return fmt.Sprintf("cron(%d %d * * ? *)", minute, hour)
}

// Payload returns the constant invocation input for the trigger.
func (t Trigger) Payload() job.Event {
	return job.Event{PostType: t.PostType.String()}
}

// PayloadJSON returns Payload encoded as the rule's constant input.
func (t Trigger) PayloadJSON() (string, error) {
	b, err := json.Marshal(t.Payload())
	if err != nil {
		return "", fmt.Errorf("marshal payload for %s: %w", t.Name, err)
	}
	return string(b), nil
}

// Next returns the first fire time strictly after now.
func (t Trigger) Next(now time.Time) time.Time {
	local := now.In(poster.Tokyo)
	next := time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, poster.Tokyo)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
