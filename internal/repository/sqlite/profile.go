package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
)

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	var rating sql.NullFloat64
	if p.Rating != nil {
		rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
	}
	_, err := r.conn.Exec(ctx, `INSERT INTO profiles (user_id, full_name, rating, total_reviews) VALUES (?, ?, ?, ?)`,
		p.UserID, p.FullName, rating, p.TotalReviews)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, `SELECT user_id, full_name, rating, total_reviews FROM profiles WHERE user_id = ?`, userID)
	var p models.Profile
	var rating sql.NullFloat64
	if err := row.Scan(&p.UserID, &p.FullName, &rating, &p.TotalReviews); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Rating = ratingPtr(rating)
	return &p, nil
}

func ratingPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
