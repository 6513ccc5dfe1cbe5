// Package policy holds the marketplace authorization rules. Every function is
// a total predicate over in-memory values; none of them perform I/O.
package policy

import "github.com/garnizeh/gigmarket/pkg/models"

// CanApply reports whether actor may submit an application to job.
func CanApply(actor models.Actor, job models.Job) bool {
	return actor.Authenticated() &&
		!actor.Is(job.PosterID) &&
		job.Status == models.JobActive
}

// CanManageApplications reports whether actor may list and decide the
// applications of job.
func CanManageApplications(actor models.Actor, job models.Job) bool {
	return actor.Is(job.PosterID)
}

// CanDecide reports whether actor may accept or reject application.
// The application must belong to job.
func CanDecide(actor models.Actor, application models.Application, job models.Job) bool {
	return CanManageApplications(actor, job) &&
		application.JobID == job.ID &&
		!application.Status.Terminal()
}

// CanClose reports whether actor may withdraw job from the marketplace.
func CanClose(actor models.Actor, job models.Job) bool {
	return CanManageApplications(actor, job) && job.Status.CanTransitionTo(models.JobClosed)
}
