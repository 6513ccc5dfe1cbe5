package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
)

const applicationColumns = `a.id, a.job_id, a.applicant_id, a.message, a.proposed_rate_cents, a.status, a.applied_at, a.decided_at`

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) (string, error) {
	if a == nil {
		return "", fmt.Errorf("application is nil")
	}
	id := a.ID
	if id == "" {
		id = newID()
	}
	status := a.Status
	if status == "" {
		status = models.ApplicationPending
	}
	var rate sql.NullInt64
	if a.ProposedRate != nil {
		rate = sql.NullInt64{Int64: a.ProposedRate.Cents(), Valid: true}
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO applications (id, job_id, applicant_id, message, proposed_rate_cents, status, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, a.JobID, a.ApplicantID, a.Message, rate, string(status), toMillis(a.AppliedAt))
	if isUniqueViolation(err) {
		return "", repository.ErrDuplicate
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *SQLiteRepo) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = ?`, id)
	var a models.Application
	if err := scanApplication(row, &a); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *SQLiteRepo) GetApplicationByApplicant(ctx context.Context, jobID, applicantID string) (*models.ApplicationListing, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+`, COALESCE(p.full_name, ''), p.rating, COALESCE(p.total_reviews, 0)
		FROM applications a LEFT JOIN profiles p ON p.user_id = a.applicant_id
		WHERE a.job_id = ? AND a.applicant_id = ?`, jobID, applicantID)

	var l models.ApplicationListing
	if err := scanApplicationListing(row, &l); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// ListApplicationsByJob returns applications newest first with the applicant summary.
func (r *SQLiteRepo) ListApplicationsByJob(ctx context.Context, jobID string) ([]models.ApplicationListing, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+applicationColumns+`, COALESCE(p.full_name, ''), p.rating, COALESCE(p.total_reviews, 0)
		FROM applications a LEFT JOIN profiles p ON p.user_id = a.applicant_id
		WHERE a.job_id = ?
		ORDER BY a.applied_at DESC, a.rowid DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ApplicationListing
	for rows.Next() {
		var l models.ApplicationListing
		if err := scanApplicationListing(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DecideApplication sets the decision and applies the requested cascade in one
// transaction. Nothing changes unless the application is still pending.
func (r *SQLiteRepo) DecideApplication(ctx context.Context, c repository.DecisionChange) (bool, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	decidedAt := toMillis(c.DecidedAt)
	res, err := tx.ExecContext(ctx, `UPDATE applications SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
		string(c.Status), decidedAt, c.ApplicationID, string(models.ApplicationPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		err = tx.Rollback()
		return false, err
	}

	if c.FillJob {
		if _, err = tx.ExecContext(ctx, `UPDATE jobs SET status = ? WHERE id = ? AND status = ?`,
			string(models.JobFilled), c.JobID, string(models.JobActive)); err != nil {
			return false, err
		}
	}
	if c.RejectSiblings {
		if _, err = tx.ExecContext(ctx, `UPDATE applications SET status = ?, decided_at = ? WHERE job_id = ? AND id <> ? AND status = ?`,
			string(models.ApplicationRejected), decidedAt, c.JobID, c.ApplicationID, string(models.ApplicationPending)); err != nil {
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	r.logger.Debug("application decision stored",
		"application_id", c.ApplicationID,
		"status", string(c.Status),
		"fill_job", c.FillJob,
		"reject_siblings", c.RejectSiblings,
	)
	return true, nil
}

func scanApplication(row rowScanner, a *models.Application, extra ...any) error {
	var status string
	var rate, decided sql.NullInt64
	var applied int64
	dest := append([]any{&a.ID, &a.JobID, &a.ApplicantID, &a.Message, &rate, &status, &applied, &decided}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	a.Status = models.ApplicationStatus(status)
	a.AppliedAt = fromMillis(applied)
	if rate.Valid {
		m := models.Money(rate.Int64)
		a.ProposedRate = &m
	}
	if decided.Valid {
		t := fromMillis(decided.Int64)
		a.DecidedAt = &t
	}
	return nil
}

func scanApplicationListing(row rowScanner, l *models.ApplicationListing) error {
	var rating sql.NullFloat64
	var reviews int
	if err := scanApplication(row, &l.Application, &l.Applicant.FullName, &rating, &reviews); err != nil {
		return err
	}
	// applicant summaries carry the rating but not the review count
	l.Applicant.Rating = ratingPtr(rating)
	return nil
}
