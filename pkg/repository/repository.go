package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/gigmarket/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Single-record reads return (nil, nil) when the record does not exist.

// ErrDuplicate is returned by inserts that violate a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type JobRepo interface {
	// CreateJob inserts the job and returns the identity assigned to it.
	CreateJob(ctx context.Context, j *models.Job) (string, error)
	GetJob(ctx context.Context, id string) (*models.JobDetail, error)
	ListActiveJobs(ctx context.Context, q models.JobQuery) ([]models.JobListing, error)
	// TransitionJob moves the job to the next status only if it currently has
	// status from. It reports whether a row changed.
	TransitionJob(ctx context.Context, id string, from, to models.JobStatus) (bool, error)
}

// DecisionChange describes a decision and the optional cascade applied with it
// in a single transaction.
type DecisionChange struct {
	ApplicationID  string
	JobID          string
	Status         models.ApplicationStatus
	DecidedAt      time.Time
	FillJob        bool // move the job active -> filled
	RejectSiblings bool // move other pending applications of the job to rejected
}

type ApplicationRepo interface {
	// CreateApplication returns ErrDuplicate when the applicant already applied.
	CreateApplication(ctx context.Context, a *models.Application) (string, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	GetApplicationByApplicant(ctx context.Context, jobID, applicantID string) (*models.ApplicationListing, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]models.ApplicationListing, error)
	// DecideApplication applies the change only while the application is pending.
	// It reports whether the application changed.
	DecideApplication(ctx context.Context, c DecisionChange) (bool, error)
}
