package models

import "time"

// Domain models matching the database schema in db/migrations/0001_init.sql

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" validate:"required,email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Created      time.Time `json:"created" db:"created_at"`
}

// Profile is owned by the identity provider; the marketplace only reads it.
type Profile struct {
	UserID       string   `json:"user_id" db:"user_id"`
	FullName     string   `json:"full_name" db:"full_name"`
	Rating       *float64 `json:"rating" db:"rating"`
	TotalReviews int      `json:"total_reviews" db:"total_reviews"`
}

// ProfileSummary is the slice of a profile embedded next to jobs and applications.
// A nil Rating means the profile has no reviews yet and must not be shown as 0.
type ProfileSummary struct {
	FullName string   `json:"full_name"`
	Rating   *float64 `json:"rating"`
}

// Unrated reports whether the profile has no aggregate rating yet.
func (p ProfileSummary) Unrated() bool { return p.Rating == nil }

type Job struct {
	ID           string    `json:"id" db:"id"`
	PosterID     string    `json:"poster_id" db:"poster_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Category     Category  `json:"category" db:"category"`
	Location     string    `json:"location" db:"location"`
	Budget       Money     `json:"budget" db:"budget_cents"`
	Duration     string    `json:"duration,omitempty" db:"duration"`
	Requirements string    `json:"requirements,omitempty" db:"requirements"`
	ContactInfo  string    `json:"contact_info,omitempty" db:"contact_info"`
	Status       JobStatus `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// JobListing is a job joined with its poster for browse views.
type JobListing struct {
	Job
	Poster ProfileSummary `json:"poster"`
}

// PosterDetail is the poster shown on a single job. TotalReviews is always
// serialized, including zero.
type PosterDetail struct {
	ProfileSummary
	TotalReviews int `json:"total_reviews"`
}

// JobDetail is a job joined with its poster including the review count.
type JobDetail struct {
	Job
	Poster PosterDetail `json:"poster"`
}

type Application struct {
	ID           string            `json:"id" db:"id"`
	JobID        string            `json:"job_id" db:"job_id"`
	ApplicantID  string            `json:"applicant_id" db:"applicant_id"`
	Message      string            `json:"message" db:"message"`
	ProposedRate *Money            `json:"proposed_rate,omitempty" db:"proposed_rate_cents"`
	Status       ApplicationStatus `json:"status" db:"status"`
	AppliedAt    time.Time         `json:"applied_at" db:"applied_at"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty" db:"decided_at"`
}

// ApplicationListing is an application joined with its applicant.
type ApplicationListing struct {
	Application
	Applicant ProfileSummary `json:"applicant"`
}
