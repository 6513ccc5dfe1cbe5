package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/gigmarket/pkg/models"
)

const jobColumns = `j.id, j.poster_id, j.title, j.description, j.category, j.location, j.budget_cents,
	j.duration, j.requirements, j.contact_info, j.status, j.created_at,
	COALESCE(p.full_name, ''), p.rating, COALESCE(p.total_reviews, 0)`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (string, error) {
	if j == nil {
		return "", fmt.Errorf("job is nil")
	}
	id := j.ID
	if id == "" {
		id = newID()
	}
	status := j.Status
	if status == "" {
		status = models.JobActive
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO jobs (id, poster_id, title, description, category, location, budget_cents,
		duration, requirements, contact_info, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, j.PosterID, j.Title, j.Description, string(j.Category), j.Location, j.Budget.Cents(),
		j.Duration, j.Requirements, j.ContactInfo, string(status), toMillis(j.CreatedAt))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *SQLiteRepo) GetJob(ctx context.Context, id string) (*models.JobDetail, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+`
		FROM jobs j LEFT JOIN profiles p ON p.user_id = j.poster_id
		WHERE j.id = ?`, id)

	job, poster, reviews, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &models.JobDetail{Job: job, Poster: models.PosterDetail{ProfileSummary: poster, TotalReviews: reviews}}, nil
}

// ListActiveJobs filters active jobs by category and a case-insensitive search
// over title, description and location.
func (r *SQLiteRepo) ListActiveJobs(ctx context.Context, q models.JobQuery) ([]models.JobListing, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + jobColumns + `
		FROM jobs j LEFT JOIN profiles p ON p.user_id = j.poster_id
		WHERE j.status = ?`)
	args := []any{string(models.JobActive)}

	if q.Category != nil {
		sb.WriteString(` AND j.category = ?`)
		args = append(args, string(*q.Category))
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		sb.WriteString(` AND (lower_unicode(j.title) LIKE ? ESCAPE '\' OR lower_unicode(j.description) LIKE ? ESCAPE '\'
			OR lower_unicode(j.location) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	switch q.Sort {
	case models.SortBudgetHigh:
		sb.WriteString(` ORDER BY j.budget_cents DESC, j.created_at DESC, j.rowid DESC`)
	case models.SortBudgetLow:
		sb.WriteString(` ORDER BY j.budget_cents ASC, j.created_at DESC, j.rowid DESC`)
	default:
		sb.WriteString(` ORDER BY j.created_at DESC, j.rowid DESC`)
	}
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := r.conn.QueryRows(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobListing
	for rows.Next() {
		// listings carry the rating but not the review count
		job, poster, _, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, models.JobListing{Job: job, Poster: poster})
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) TransitionJob(ctx context.Context, id string, from, to models.JobStatus) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE jobs SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanJob(row rowScanner) (models.Job, models.ProfileSummary, int, error) {
	var j models.Job
	var ps models.ProfileSummary
	var category, status string
	var budget, created int64
	var rating sql.NullFloat64
	var reviews int
	err := row.Scan(&j.ID, &j.PosterID, &j.Title, &j.Description, &category, &j.Location, &budget,
		&j.Duration, &j.Requirements, &j.ContactInfo, &status, &created,
		&ps.FullName, &rating, &reviews)
	if err != nil {
		return j, ps, 0, err
	}
	j.Category = models.Category(category)
	j.Status = models.JobStatus(status)
	j.Budget = models.Money(budget)
	j.CreatedAt = fromMillis(created)
	ps.Rating = ratingPtr(rating)
	return j, ps, reviews, nil
}
