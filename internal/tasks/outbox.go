package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/garnizeh/gigmarket/internal/market"
)

// Outbox stores marketplace events as tasks so delivery survives restarts.
// Task types equal the event type.
type Outbox struct {
	repo        *Repository
	maxAttempts int
}

var _ market.EventSink = (*Outbox)(nil)

func NewOutbox(repo *Repository, maxAttempts int) *Outbox {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Outbox{repo: repo, maxAttempts: maxAttempts}
}

// Publish enqueues e. Decisions are delivered ahead of other events.
func (o *Outbox) Publish(ctx context.Context, e market.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	priority := 100
	if e.Type == market.EventApplicationDecided {
		priority = 10
	}
	_, err = o.repo.Enqueue(ctx, &Task{
		Type:        string(e.Type),
		Payload:     b,
		Priority:    priority,
		MaxAttempts: o.maxAttempts,
		ScheduledAt: time.Now(),
	})
	return err
}

// DecodeEvent reads the event carried by an outbox task.
func DecodeEvent(t *Task) (market.Event, error) {
	var e market.Event
	err := json.Unmarshal(t.Payload, &e)
	return e, err
}
