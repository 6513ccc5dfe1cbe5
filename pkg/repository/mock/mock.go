package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
	"github.com/google/uuid"
)

// Store is an in-memory implementation of every repository contract. It
// enforces the same uniqueness and conditional-update rules as the SQLite
// store so domain tests can run without a database.
type Store struct {
	mu sync.Mutex

	// Err, when set, is returned by every call to simulate an unavailable store.
	Err error
	// CreateUserErr is returned by CreateUser only.
	CreateUserErr error

	users        map[string]models.User
	emails       map[string]string
	profiles     map[string]models.Profile
	jobs         map[string]models.Job
	apps         map[string]models.Application
	appsByPair   map[string]string
	insertOrder  map[string]int
	nextSequence int
}

var _ repository.UserRepo = (*Store)(nil)
var _ repository.ProfileRepo = (*Store)(nil)
var _ repository.JobRepo = (*Store)(nil)
var _ repository.ApplicationRepo = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:       map[string]models.User{},
		emails:      map[string]string{},
		profiles:    map[string]models.Profile{},
		jobs:        map[string]models.Job{},
		apps:        map[string]models.Application{},
		appsByPair:  map[string]string{},
		insertOrder: map[string]int{},
	}
}

func pairKey(jobID, applicantID string) string { return jobID + "/" + applicantID }

func (s *Store) seq(id string) {
	s.nextSequence++
	s.insertOrder[id] = s.nextSequence
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if s.CreateUserErr != nil {
		return "", s.CreateUserErr
	}
	email := strings.ToLower(u.Email)
	if _, ok := s.emails[email]; ok {
		return "", repository.ErrDuplicate
	}
	stored := *u
	stored.ID = uuid.NewString()
	s.users[stored.ID] = stored
	s.emails[email] = stored.ID
	return stored.ID, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	u := s.users[id]
	return &u, nil
}

// Profiles

func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.profiles[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	s.profiles[p.UserID] = *p
	return nil
}

// PutProfile stores or replaces a profile, including its rating.
func (s *Store) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) summary(userID string) models.ProfileSummary {
	p := s.profiles[userID]
	return models.ProfileSummary{FullName: p.FullName, Rating: p.Rating}
}

// Jobs

func (s *Store) CreateJob(ctx context.Context, j *models.Job) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	stored := *j
	stored.ID = uuid.NewString()
	s.jobs[stored.ID] = stored
	s.seq(stored.ID)
	return stored.ID, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*models.JobDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &models.JobDetail{Job: j, Poster: models.PosterDetail{
		ProfileSummary: s.summary(j.PosterID),
		TotalReviews:   s.profiles[j.PosterID].TotalReviews,
	}}, nil
}

func (s *Store) ListActiveJobs(ctx context.Context, q models.JobQuery) ([]models.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	term := strings.ToLower(q.Search)
	var out []models.JobListing
	for _, j := range s.jobs {
		if j.Status != models.JobActive {
			continue
		}
		if q.Category != nil && j.Category != *q.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(j.Title), term) &&
			!strings.Contains(strings.ToLower(j.Description), term) &&
			!strings.Contains(strings.ToLower(j.Location), term) {
			continue
		}
		out = append(out, models.JobListing{Job: j, Poster: s.summary(j.PosterID)})
	}

	newer := func(a, b models.JobListing) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return s.insertOrder[a.ID] > s.insertOrder[b.ID]
	}
	sort.Slice(out, func(i, k int) bool {
		a, b := out[i], out[k]
		switch q.Sort {
		case models.SortBudgetHigh:
			if a.Budget != b.Budget {
				return a.Budget > b.Budget
			}
		case models.SortBudgetLow:
			if a.Budget != b.Budget {
				return a.Budget < b.Budget
			}
		}
		return newer(a, b)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) TransitionJob(ctx context.Context, id string, from, to models.JobStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	j, ok := s.jobs[id]
	if !ok || j.Status != from {
		return false, nil
	}
	j.Status = to
	s.jobs[id] = j
	return true, nil
}

// Applications

func (s *Store) CreateApplication(ctx context.Context, a *models.Application) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	key := pairKey(a.JobID, a.ApplicantID)
	if _, ok := s.appsByPair[key]; ok {
		return "", repository.ErrDuplicate
	}
	stored := *a
	stored.ID = uuid.NewString()
	s.apps[stored.ID] = stored
	s.appsByPair[key] = stored.ID
	s.seq(stored.ID)
	return stored.ID, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.apps[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) GetApplicationByApplicant(ctx context.Context, jobID, applicantID string) (*models.ApplicationListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	id, ok := s.appsByPair[pairKey(jobID, applicantID)]
	if !ok {
		return nil, nil
	}
	a := s.apps[id]
	return &models.ApplicationListing{Application: a, Applicant: s.summary(a.ApplicantID)}, nil
}

func (s *Store) ListApplicationsByJob(ctx context.Context, jobID string) ([]models.ApplicationListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.ApplicationListing
	for _, a := range s.apps {
		if a.JobID == jobID {
			out = append(out, models.ApplicationListing{Application: a, Applicant: s.summary(a.ApplicantID)})
		}
	}
	sort.Slice(out, func(i, k int) bool {
		a, b := out[i], out[k]
		if !a.AppliedAt.Equal(b.AppliedAt) {
			return a.AppliedAt.After(b.AppliedAt)
		}
		return s.insertOrder[a.ID] > s.insertOrder[b.ID]
	})
	return out, nil
}

func (s *Store) DecideApplication(ctx context.Context, c repository.DecisionChange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	a, ok := s.apps[c.ApplicationID]
	if !ok || a.Status != models.ApplicationPending {
		return false, nil
	}
	decidedAt := c.DecidedAt
	a.Status = c.Status
	a.DecidedAt = &decidedAt
	s.apps[a.ID] = a

	if c.FillJob {
		if j, ok := s.jobs[c.JobID]; ok && j.Status == models.JobActive {
			j.Status = models.JobFilled
			s.jobs[j.ID] = j
		}
	}
	if c.RejectSiblings {
		for id, sib := range s.apps {
			if sib.JobID == c.JobID && id != a.ID && sib.Status == models.ApplicationPending {
				sib.Status = models.ApplicationRejected
				sib.DecidedAt = &decidedAt
				s.apps[id] = sib
			}
		}
	}
	return true, nil
}
