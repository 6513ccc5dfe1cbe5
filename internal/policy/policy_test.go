package policy_test

import (
	"testing"

	"github.com/garnizeh/gigmarket/internal/policy"
	"github.com/garnizeh/gigmarket/pkg/models"
)

var (
	poster = models.Actor{ID: "poster"}
	worker = models.Actor{ID: "worker"}
)

func job(status models.JobStatus) models.Job {
	return models.Job{ID: "job-1", PosterID: poster.ID, Status: status}
}

func TestCanApply(t *testing.T) {
	tests := []struct {
		name  string
		actor models.Actor
		job   models.Job
		want  bool
	}{
		{"worker on active job", worker, job(models.JobActive), true},
		{"anonymous", models.Anonymous, job(models.JobActive), false},
		{"poster on own job", poster, job(models.JobActive), false},
		{"filled job", worker, job(models.JobFilled), false},
		{"closed job", worker, job(models.JobClosed), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanApply(tt.actor, tt.job); got != tt.want {
				t.Fatalf("CanApply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageApplications(t *testing.T) {
	tests := []struct {
		name  string
		actor models.Actor
		want  bool
	}{
		{"poster", poster, true},
		{"other user", worker, false},
		{"anonymous", models.Anonymous, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanManageApplications(tt.actor, job(models.JobActive)); got != tt.want {
				t.Fatalf("CanManageApplications = %v, want %v", got, tt.want)
			}
		})
	}

	// a job with no poster must not be manageable by the anonymous actor
	orphan := models.Job{ID: "job-2"}
	if policy.CanManageApplications(models.Anonymous, orphan) {
		t.Fatalf("anonymous actor must never manage applications")
	}
}

func TestCanDecide(t *testing.T) {
	app := func(status models.ApplicationStatus) models.Application {
		return models.Application{ID: "app-1", JobID: "job-1", ApplicantID: worker.ID, Status: status}
	}
	tests := []struct {
		name  string
		actor models.Actor
		app   models.Application
		job   models.Job
		want  bool
	}{
		{"poster on pending", poster, app(models.ApplicationPending), job(models.JobActive), true},
		{"poster on filled job pending app", poster, app(models.ApplicationPending), job(models.JobFilled), true},
		{"poster on accepted", poster, app(models.ApplicationAccepted), job(models.JobActive), false},
		{"poster on rejected", poster, app(models.ApplicationRejected), job(models.JobActive), false},
		{"applicant", worker, app(models.ApplicationPending), job(models.JobActive), false},
		{"anonymous", models.Anonymous, app(models.ApplicationPending), job(models.JobActive), false},
		{"application of another job", poster, models.Application{JobID: "job-9", Status: models.ApplicationPending}, job(models.JobActive), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanDecide(tt.actor, tt.app, tt.job); got != tt.want {
				t.Fatalf("CanDecide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanClose(t *testing.T) {
	if !policy.CanClose(poster, job(models.JobActive)) {
		t.Fatalf("poster should close an active job")
	}
	if policy.CanClose(worker, job(models.JobActive)) {
		t.Fatalf("non-poster must not close a job")
	}
	for _, st := range []models.JobStatus{models.JobFilled, models.JobClosed} {
		if policy.CanClose(poster, job(st)) {
			t.Fatalf("%s job must not be closable", st)
		}
	}
}
