package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, ok := ParseCategory(" " + string(c) + " ")
		if !ok || got != c {
			t.Fatalf("expected %q to parse", c)
		}
		if c.Label() == "" {
			t.Fatalf("missing label for %q", c)
		}
	}
	for _, bad := range []string{"", "Gardening", "plumbing", "pet care"} {
		if _, ok := ParseCategory(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if len(Categories()) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(Categories()))
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cs := Categories()
	cs[0] = "mutated"
	if Categories()[0] != CategoryConstruction {
		t.Fatalf("Categories must not expose internal slice")
	}
}

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobActive, JobFilled, true},
		{JobActive, JobClosed, true},
		{JobActive, JobActive, false},
		{JobFilled, JobActive, false},
		{JobFilled, JobClosed, false},
		{JobClosed, JobActive, false},
		{JobClosed, JobFilled, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v", tc.from, tc.to, tc.ok)
		}
	}
}

func TestDecision(t *testing.T) {
	if d, ok := ParseDecision("accept"); !ok || d.Status() != ApplicationAccepted {
		t.Fatalf("accept should map to accepted")
	}
	if d, ok := ParseDecision("reject"); !ok || d.Status() != ApplicationRejected {
		t.Fatalf("reject should map to rejected")
	}
	if _, ok := ParseDecision("Accept"); ok {
		t.Fatalf("decision parsing is case sensitive")
	}
	if ApplicationPending.Terminal() || !ApplicationAccepted.Terminal() || !ApplicationRejected.Terminal() {
		t.Fatalf("unexpected terminal states")
	}
}

func TestParseJobSort(t *testing.T) {
	cases := map[string]JobSort{
		"":            SortNewest,
		"newest":      SortNewest,
		"budget_high": SortBudgetHigh,
		"budget_low":  SortBudgetLow,
		"cheapest":    SortNewest,
	}
	for in, want := range cases {
		if got := ParseJobSort(in); got != want {
			t.Fatalf("ParseJobSort(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestActor(t *testing.T) {
	if Anonymous.Authenticated() || Anonymous.Is("") {
		t.Fatalf("anonymous actor must not authenticate")
	}
	a := Actor{ID: "u1"}
	if !a.Authenticated() || !a.Is("u1") || a.Is("u2") {
		t.Fatalf("unexpected actor identity checks")
	}
}

func TestPosterDetailAlwaysCarriesReviewCount(t *testing.T) {
	detail, err := json.Marshal(JobDetail{Poster: PosterDetail{ProfileSummary: ProfileSummary{FullName: "Paula"}}})
	if err != nil {
		t.Fatalf("marshal detail: %v", err)
	}
	if !strings.Contains(string(detail), `"poster":{"full_name":"Paula","rating":null,"total_reviews":0}`) {
		t.Fatalf("unexpected detail poster: %s", detail)
	}

	listing, err := json.Marshal(JobListing{Poster: ProfileSummary{FullName: "Paula"}})
	if err != nil {
		t.Fatalf("marshal listing: %v", err)
	}
	if strings.Contains(string(listing), "total_reviews") {
		t.Fatalf("listing poster must not carry the review count: %s", listing)
	}
}
