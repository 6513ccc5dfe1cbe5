package metrics

import (
	"context"

	"github.com/garnizeh/gigmarket/internal/market"
)

// CountingSink counts events before handing them to Next.
type CountingSink struct {
	Next market.EventSink
}

func (s CountingSink) Publish(ctx context.Context, e market.Event) error {
	RecordEvent(string(e.Type))
	if s.Next == nil {
		return nil
	}
	return s.Next.Publish(ctx, e)
}
