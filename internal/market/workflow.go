package market

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/garnizeh/gigmarket/internal/policy"
	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
)

// Workflow owns application submission and the poster's accept/reject decision.
type Workflow struct {
	jobs repository.JobRepo
	apps repository.ApplicationRepo
	opts Options
}

func NewWorkflow(jobs repository.JobRepo, apps repository.ApplicationRepo, opts Options) *Workflow {
	return &Workflow{jobs: jobs, apps: apps, opts: opts.withDefaults()}
}

// SubmitApplicationInput carries the raw application form values.
type SubmitApplicationInput struct {
	Message      string
	ProposedRate string // optional
}

func (w *Workflow) loadJob(ctx context.Context, jobID string) (*models.JobDetail, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrNotFound
	}
	job, err := w.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, storeError(err, "get job")
	}
	if job == nil {
		return nil, newError(KindNotFound, "job %s not found", jobID)
	}
	return job, nil
}

// SubmitApplication records actor's application to a job. Preconditions are
// checked in a fixed order and the first failure is returned.
func (w *Workflow) SubmitApplication(ctx context.Context, actor models.Actor, jobID string, in SubmitApplicationInput) (*models.Application, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}
	detail, err := w.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job := detail.Job
	if !policy.CanApply(actor, job) {
		// actor is authenticated, so only the job state or ownership can refuse
		if job.Status != models.JobActive {
			return nil, ErrJobNotOpen
		}
		return nil, ErrSelfApplicationForbidden
	}

	existing, err := w.apps.GetApplicationByApplicant(ctx, job.ID, actor.ID)
	if err != nil {
		return nil, storeError(err, "check existing application")
	}
	if existing != nil {
		return nil, ErrDuplicateApplication
	}

	message, err := requireText("message", in.Message, maxMessageLen)
	if err != nil {
		return nil, err
	}
	app := models.Application{
		JobID:       job.ID,
		ApplicantID: actor.ID,
		Message:     message,
		Status:      models.ApplicationPending,
		AppliedAt:   w.opts.Now(),
	}
	if rate := strings.TrimSpace(in.ProposedRate); rate != "" {
		m, err := models.ParseMoney(rate)
		if err != nil {
			return nil, invalidField(KindInvalidRate, "proposed_rate", "proposed rate must be a positive amount")
		}
		app.ProposedRate = &m
	}

	// the store's unique (job, applicant) index settles races the check above misses
	id, err := w.apps.CreateApplication(ctx, &app)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateApplication
	}
	if err != nil {
		return nil, storeError(err, "create application")
	}
	app.ID = id

	w.opts.Logger.Info("application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", job.ID),
		slog.String("applicant_id", actor.ID),
	)
	publish(ctx, w.opts.Events, w.opts.Logger, Event{
		Type:          EventApplicationSubmitted,
		JobID:         job.ID,
		JobTitle:      job.Title,
		ApplicationID: app.ID,
		ActorID:       actor.ID,
		RecipientID:   job.PosterID,
		Status:        string(app.Status),
		OccurredAt:    app.AppliedAt,
	})

	return &app, nil
}

// ListApplicationsForJob returns every application of a job, newest first.
// Only the job's poster may list them.
func (w *Workflow) ListApplicationsForJob(ctx context.Context, actor models.Actor, jobID string) ([]models.ApplicationListing, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}
	detail, err := w.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageApplications(actor, detail.Job) {
		return nil, ErrForbidden
	}

	out, err := w.apps.ListApplicationsByJob(ctx, detail.ID)
	if err != nil {
		return nil, storeError(err, "list applications")
	}
	if out == nil {
		out = []models.ApplicationListing{}
	}
	return out, nil
}

// GetOwnApplication returns actor's application to a job.
func (w *Workflow) GetOwnApplication(ctx context.Context, actor models.Actor, jobID string) (*models.ApplicationListing, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrNotFound
	}
	app, err := w.apps.GetApplicationByApplicant(ctx, jobID, actor.ID)
	if err != nil {
		return nil, storeError(err, "get own application")
	}
	if app == nil {
		return nil, newError(KindNotFound, "no application for job %s", jobID)
	}
	return app, nil
}

// DecideApplication accepts or rejects a pending application on behalf of the
// job's poster and returns the updated record.
func (w *Workflow) DecideApplication(ctx context.Context, actor models.Actor, applicationID string, decision models.Decision) (*models.Application, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if _, ok := models.ParseDecision(string(decision)); !ok {
		return nil, invalidField(KindInvalidInput, "decision", "decision must be accept or reject")
	}

	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return nil, ErrNotFound
	}
	app, err := w.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "get application")
	}
	if app == nil {
		return nil, newError(KindNotFound, "application %s not found", applicationID)
	}
	detail, err := w.loadJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	job := detail.Job
	if !policy.CanManageApplications(actor, job) {
		return nil, ErrForbidden
	}
	if !policy.CanDecide(actor, *app, job) {
		return nil, ErrAlreadyDecided
	}

	accept := decision == models.DecisionAccept
	changed, err := w.apps.DecideApplication(ctx, repository.DecisionChange{
		ApplicationID:  app.ID,
		JobID:          job.ID,
		Status:         decision.Status(),
		DecidedAt:      w.opts.Now(),
		FillJob:        accept && w.opts.FillJobOnAccept,
		RejectSiblings: accept && w.opts.RejectSiblingsOnAccept,
	})
	if err != nil {
		return nil, storeError(err, "decide application")
	}
	if !changed {
		// another request decided it between the read and the update
		return nil, ErrAlreadyDecided
	}

	updated, err := w.apps.GetApplication(ctx, app.ID)
	if err != nil {
		return nil, storeError(err, "reload application")
	}
	if updated == nil {
		return nil, newError(KindNotFound, "application %s not found", app.ID)
	}

	w.opts.Logger.Info("application decided",
		slog.String("application_id", updated.ID),
		slog.String("job_id", job.ID),
		slog.String("status", string(updated.Status)),
	)
	publish(ctx, w.opts.Events, w.opts.Logger, Event{
		Type:          EventApplicationDecided,
		JobID:         job.ID,
		JobTitle:      job.Title,
		ApplicationID: updated.ID,
		ActorID:       actor.ID,
		RecipientID:   updated.ApplicantID,
		Status:        string(updated.Status),
		OccurredAt:    w.opts.Now(),
	})

	return updated, nil
}
