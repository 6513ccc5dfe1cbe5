package market

import (
	"log/slog"
	"time"
)

const (
	defaultSummaryLimit = 6
	defaultMaxListLimit = 500
)

// Options configures Catalog and Workflow. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	Events EventSink
	// Now is the clock used for created_at and applied_at.
	Now func() time.Time

	// SummaryLimit bounds RecentJobs.
	SummaryLimit int
	// MaxListLimit caps any explicit ListJobs limit.
	MaxListLimit int

	// FillJobOnAccept moves the job to filled when an application is accepted.
	FillJobOnAccept bool
	// RejectSiblingsOnAccept rejects the job's other pending applications
	// when one is accepted.
	RejectSiblingsOnAccept bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Events == nil {
		o.Events = NopSink{}
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.SummaryLimit <= 0 {
		o.SummaryLimit = defaultSummaryLimit
	}
	if o.MaxListLimit <= 0 {
		o.MaxListLimit = defaultMaxListLimit
	}
	return o
}
