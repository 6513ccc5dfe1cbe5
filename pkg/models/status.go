package models

type JobStatus string

const (
	JobActive JobStatus = "active"
	JobFilled JobStatus = "filled"
	JobClosed JobStatus = "closed"
)

// CanTransitionTo reports whether a job may move from s to next.
// Only active jobs move, and only forward into a terminal state.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	return s == JobActive && (next == JobFilled || next == JobClosed)
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Terminal reports whether the application has been decided.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// Decision is a poster's verdict on a pending application.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision validates a raw decision string.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionAccept, DecisionReject:
		return Decision(s), true
	}
	return "", false
}

// Status returns the application status the decision leads to.
func (d Decision) Status() ApplicationStatus {
	switch d {
	case DecisionAccept:
		return ApplicationAccepted
	case DecisionReject:
		return ApplicationRejected
	}
	return ApplicationPending
}
