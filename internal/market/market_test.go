package market_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository/mock"
)

var (
	poster    = models.Actor{ID: "poster"}
	applicant = models.Actor{ID: "applicant"}
	other     = models.Actor{ID: "other"}
)

// recordingSink collects published events.
type recordingSink struct {
	mu     sync.Mutex
	events []market.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, e market.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) types() []market.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]market.EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// stepClock returns a clock advancing one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	store    *mock.Store
	sink     *recordingSink
	catalog  *market.Catalog
	workflow *market.Workflow
}

func newFixture(mutate ...func(*market.Options)) *fixture {
	store := mock.NewStore()
	sink := &recordingSink{}
	opts := market.Options{Events: sink, Now: stepClock()}
	for _, m := range mutate {
		m(&opts)
	}
	return &fixture{
		store:    store,
		sink:     sink,
		catalog:  market.NewCatalog(store, opts),
		workflow: market.NewWorkflow(store, store, opts),
	}
}

func validJob() market.CreateJobInput {
	return market.CreateJobInput{
		Title:       "Deep clean apartment",
		Description: "Two bedrooms, kitchen and bathroom",
		Category:    "cleaning",
		Location:    "Porto",
		Budget:      "100",
	}
}

var errStoreDown = errors.New("database is locked")
