package market

import (
	"context"
	"log/slog"
	"strings"

	"github.com/garnizeh/gigmarket/internal/policy"
	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
)

// Catalog owns job creation and the browse query composition.
type Catalog struct {
	jobs repository.JobRepo
	opts Options
}

func NewCatalog(jobs repository.JobRepo, opts Options) *Catalog {
	return &Catalog{jobs: jobs, opts: opts.withDefaults()}
}

// CreateJobInput carries the raw form values of a new job.
type CreateJobInput struct {
	Title        string
	Description  string
	Category     string
	Location     string
	Budget       string
	Duration     string
	Requirements string
	ContactInfo  string
}

// CreateJob validates in and stores an active job posted by actor.
func (c *Catalog) CreateJob(ctx context.Context, actor models.Actor, in CreateJobInput) (*models.Job, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}

	category, ok := models.ParseCategory(in.Category)
	if !ok {
		return nil, invalidField(KindInvalidCategory, "category", "category must be one of the listed categories")
	}
	budget, err := models.ParseMoney(in.Budget)
	if err != nil {
		return nil, invalidField(KindInvalidBudget, "budget", "budget must be a positive amount")
	}

	job := models.Job{
		PosterID:  actor.ID,
		Category:  category,
		Budget:    budget,
		Status:    models.JobActive,
		CreatedAt: c.opts.Now(),
	}
	if job.Title, err = requireText("title", in.Title, maxTitleLen); err != nil {
		return nil, err
	}
	if job.Description, err = requireText("description", in.Description, maxTextLen); err != nil {
		return nil, err
	}
	if job.Location, err = requireText("location", in.Location, maxTitleLen); err != nil {
		return nil, err
	}
	if job.Duration, err = optionalText("duration", in.Duration, maxTitleLen); err != nil {
		return nil, err
	}
	if job.Requirements, err = optionalText("requirements", in.Requirements, maxTextLen); err != nil {
		return nil, err
	}
	if job.ContactInfo, err = optionalText("contact_info", in.ContactInfo, maxTitleLen); err != nil {
		return nil, err
	}

	id, err := c.jobs.CreateJob(ctx, &job)
	if err != nil {
		return nil, storeError(err, "create job")
	}
	job.ID = id

	c.opts.Logger.Info("job created",
		slog.String("job_id", job.ID),
		slog.String("poster_id", job.PosterID),
		slog.String("category", string(job.Category)),
	)
	publish(ctx, c.opts.Events, c.opts.Logger, Event{
		Type:        EventJobCreated,
		JobID:       job.ID,
		JobTitle:    job.Title,
		ActorID:     actor.ID,
		RecipientID: actor.ID,
		Status:      string(job.Status),
		OccurredAt:  job.CreatedAt,
	})

	return &job, nil
}

// JobFilter carries raw browse parameters. Every field is optional.
type JobFilter struct {
	SearchTerm string
	Category   string
	Sort       string
	Limit      int
}

// Query validates the filter into a store query. Unknown categories and sort
// keys are dropped rather than rejected.
func (f JobFilter) Query(maxLimit int) models.JobQuery {
	q := models.JobQuery{
		Search: strings.TrimSpace(f.SearchTerm),
		Sort:   models.ParseJobSort(f.Sort),
	}
	if c, ok := models.ParseCategory(f.Category); ok {
		q.Category = &c
	}
	if f.Limit > 0 {
		q.Limit = min(f.Limit, maxLimit)
	}
	return q
}

// ListJobs returns active jobs matching f with their poster summaries.
func (c *Catalog) ListJobs(ctx context.Context, f JobFilter) ([]models.JobListing, error) {
	out, err := c.jobs.ListActiveJobs(ctx, f.Query(c.opts.MaxListLimit))
	if err != nil {
		return nil, storeError(err, "list jobs")
	}
	if out == nil {
		out = []models.JobListing{}
	}
	return out, nil
}

// RecentJobs returns the newest active jobs for summary views.
func (c *Catalog) RecentJobs(ctx context.Context) ([]models.JobListing, error) {
	return c.ListJobs(ctx, JobFilter{Sort: string(models.SortNewest), Limit: c.opts.SummaryLimit})
}

// GetJob returns the job with its poster profile.
func (c *Catalog) GetJob(ctx context.Context, id string) (*models.JobDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	job, err := c.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, storeError(err, "get job")
	}
	if job == nil {
		return nil, newError(KindNotFound, "job %s not found", id)
	}
	return job, nil
}

// CloseJob withdraws an active job. Existing applications keep their state.
func (c *Catalog) CloseJob(ctx context.Context, actor models.Actor, id string) (*models.Job, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}
	detail, err := c.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	job := detail.Job
	if !policy.CanManageApplications(actor, job) {
		return nil, ErrForbidden
	}
	if !policy.CanClose(actor, job) {
		return nil, ErrJobNotOpen
	}

	changed, err := c.jobs.TransitionJob(ctx, job.ID, models.JobActive, models.JobClosed)
	if err != nil {
		return nil, storeError(err, "close job")
	}
	if !changed {
		return nil, ErrJobNotOpen
	}
	job.Status = models.JobClosed

	c.opts.Logger.Info("job closed", slog.String("job_id", job.ID))
	publish(ctx, c.opts.Events, c.opts.Logger, Event{
		Type:        EventJobClosed,
		JobID:       job.ID,
		JobTitle:    job.Title,
		ActorID:     actor.ID,
		RecipientID: actor.ID,
		Status:      string(job.Status),
		OccurredAt:  c.opts.Now(),
	})

	return &job, nil
}
