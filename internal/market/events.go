package market

import (
	"context"
	"log/slog"
	"time"
)

// EventType names a marketplace event delivered to the notification surface.
type EventType string

const (
	EventJobCreated           EventType = "job.created"
	EventJobClosed            EventType = "job.closed"
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationDecided   EventType = "application.decided"
)

// Event describes a completed state change. RecipientID is the identity the
// event should be surfaced to.
type Event struct {
	Type          EventType `json:"type"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	ApplicationID string    `json:"application_id,omitempty"`
	ActorID       string    `json:"actor_id"`
	RecipientID   string    `json:"recipient_id"`
	Status        string    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventSink receives events after the corresponding write has been committed.
type EventSink interface {
	Publish(ctx context.Context, e Event) error
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }

// publish never fails the operation that produced the event.
func publish(ctx context.Context, sink EventSink, logger *slog.Logger, e Event) {
	if err := sink.Publish(ctx, e); err != nil {
		logger.Warn("publish event failed",
			slog.String("type", string(e.Type)),
			slog.String("job_id", e.JobID),
			slog.Any("err", err),
		)
	}
}
