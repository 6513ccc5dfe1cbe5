package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garnizeh/gigmarket/internal/db"
)

const taskColumns = `id, type, payload, status, attempts, max_attempts, priority, scheduled_at, next_try_at, last_error, created, updated`

type Repository struct {
	db *db.DB
}

func NewRepository(d *db.DB) *Repository { return &Repository{db: d} }

func millis(t time.Time) int64 { return t.UTC().UnixMilli() }

// Enqueue inserts a task into the outbox and returns the new ID
func (r *Repository) Enqueue(ctx context.Context, t *Task) (int64, error) {
	if t.MaxAttempts == 0 {
		t.MaxAttempts = 5
	}
	if t.ScheduledAt.IsZero() {
		t.ScheduledAt = time.Now()
	}
	now := millis(time.Now())
	q := `INSERT INTO outbox_tasks(type, payload, status, attempts, max_attempts, priority, scheduled_at, created, updated) VALUES(?,?,?,?,?,?,?,?,?)`
	res, err := r.db.Exec(ctx, q, t.Type, string(t.Payload), StatusQueued, t.Attempts, t.MaxAttempts, t.Priority, millis(t.ScheduledAt), now, now)
	if err != nil {
		return 0, fmt.Errorf("enqueue failed: %w", err)
	}
	return res.LastInsertId()
}

// Claim picks the next due task by priority and schedule and marks it running.
// A task left running for longer than lease, by a crashed or killed worker, is
// due again; lease <= 0 never reclaims. It returns nil when nothing is due or
// another worker claimed the task first.
func (r *Repository) Claim(ctx context.Context, lease time.Duration) (*Task, error) {
	now := millis(time.Now())
	staleBefore := int64(-1)
	if lease > 0 {
		staleBefore = now - lease.Milliseconds()
	}
	q := `SELECT ` + taskColumns + ` FROM outbox_tasks
		WHERE ((status = ? OR status = ?) AND (next_try_at IS NULL OR next_try_at <= ?) AND scheduled_at <= ?)
			OR (status = ? AND updated <= ?)
		ORDER BY priority ASC, scheduled_at ASC, id ASC LIMIT 1`
	t, err := scanTask(r.db.QueryRow(ctx, q, StatusQueued, StatusRetry, now, now, StatusRunning, staleBefore))
	if err != nil || t == nil {
		return nil, err
	}

	// updated guards reclaims of the same stale task
	res, err := r.db.Exec(ctx, `UPDATE outbox_tasks SET status = ?, updated = ? WHERE id = ? AND status = ? AND updated = ?`,
		StatusRunning, now, t.ID, t.Status, millis(t.Updated))
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}
	t.Status = StatusRunning
	t.Updated = time.UnixMilli(now).UTC()
	return t, nil
}

// Release puts a running task back in the queue without counting an attempt.
func (r *Repository) Release(ctx context.Context, t *Task) error {
	_, err := r.db.Exec(ctx, `UPDATE outbox_tasks SET status = ?, next_try_at = NULL, updated = ? WHERE id = ? AND status = ?`,
		StatusQueued, millis(time.Now()), t.ID, StatusRunning)
	if err != nil {
		return fmt.Errorf("release task: %w", err)
	}
	t.Status = StatusQueued
	return nil
}

// Get returns the task with id, or nil when it no longer exists.
func (r *Repository) Get(ctx context.Context, id int64) (*Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM outbox_tasks WHERE id = ?`, id))
}

// UpdateTask updates attempts, status, next_try_at, last_error
func (r *Repository) UpdateTask(ctx context.Context, t *Task) error {
	var nextTry any
	if t.NextTryAt != nil {
		nextTry = millis(*t.NextTryAt)
	}
	q := `UPDATE outbox_tasks SET status = ?, attempts = ?, next_try_at = ?, last_error = ?, updated = ? WHERE id = ?`
	_, err := r.db.Exec(ctx, q, t.Status, t.Attempts, nextTry, t.LastError, millis(time.Now()), t.ID)
	return err
}

// MoveToDeadLetter moves a task to dead_letter_tasks and deletes the original
func (r *Repository) MoveToDeadLetter(ctx context.Context, t *Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	insert := `INSERT INTO dead_letter_tasks(task_id, type, payload, attempts, last_error, failed_at) VALUES(?,?,?,?,?,?)`
	if _, err := tx.ExecContext(ctx, insert, t.ID, t.Type, string(t.Payload), t.Attempts, t.LastError, millis(time.Now())); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM outbox_tasks WHERE id = ?`, t.ID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DeadLetters lists dead-lettered tasks, oldest first.
func (r *Repository) DeadLetters(ctx context.Context) ([]DeadLetter, error) {
	rows, err := r.db.QueryRows(ctx, `SELECT id, task_id, type, payload, attempts, last_error, failed_at FROM dead_letter_tasks ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeadLetter
	for rows.Next() {
		var d DeadLetter
		var payload, lastErr sql.NullString
		var failed int64
		if err := rows.Scan(&d.ID, &d.TaskID, &d.Type, &payload, &d.Attempts, &lastErr, &failed); err != nil {
			return nil, err
		}
		if payload.Valid {
			d.Payload = json.RawMessage(payload.String)
		}
		d.LastError = lastErr.String
		d.FailedAt = time.UnixMilli(failed).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of outbox tasks with status.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM outbox_tasks WHERE status = ?`, status).Scan(&n)
	return n, err
}

func scanTask(row *sql.Row) (*Task, error) {
	var (
		t           Task
		payload     sql.NullString
		scheduledAt int64
		nextTry     sql.NullInt64
		lastError   sql.NullString
		created     int64
		updated     int64
	)
	if err := row.Scan(&t.ID, &t.Type, &payload, &t.Status, &t.Attempts, &t.MaxAttempts, &t.Priority, &scheduledAt, &nextTry, &lastError, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}
	t.ScheduledAt = time.UnixMilli(scheduledAt).UTC()
	t.Created = time.UnixMilli(created).UTC()
	t.Updated = time.UnixMilli(updated).UTC()
	if payload.Valid {
		t.Payload = json.RawMessage(payload.String)
	}
	if nextTry.Valid {
		nt := time.UnixMilli(nextTry.Int64).UTC()
		t.NextTryAt = &nt
	}
	if lastError.Valid {
		t.LastError = lastError.String
	}
	return &t, nil
}
