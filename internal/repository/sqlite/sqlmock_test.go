package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "github.com/garnizeh/gigmarket/internal/db"
	sqlite "github.com/garnizeh/gigmarket/internal/repository/sqlite"
	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
)

var errDiskIO = errors.New("disk I/O error")

func mockRepo(t *testing.T) (*sqlite.SQLiteRepo, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlite.New(dbpkg.Wrap(conn, nil), nil), mock
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("get job", func(t *testing.T) {
		repo, mock := mockRepo(t)
		mock.ExpectQuery("SELECT .* FROM jobs").WillReturnError(errDiskIO)

		got, err := repo.GetJob(ctx, "j1")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, errDiskIO)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list jobs", func(t *testing.T) {
		repo, mock := mockRepo(t)
		mock.ExpectQuery("SELECT .* FROM jobs").WillReturnError(errDiskIO)

		_, err := repo.ListActiveJobs(ctx, models.JobQuery{})
		assert.ErrorIs(t, err, errDiskIO)
	})

	t.Run("create application", func(t *testing.T) {
		repo, mock := mockRepo(t)
		mock.ExpectExec("INSERT INTO applications").WillReturnError(errDiskIO)

		_, err := repo.CreateApplication(ctx, &models.Application{JobID: "j1", ApplicantID: "u1", Message: "hi"})
		assert.ErrorIs(t, err, errDiskIO)
		assert.NotErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("unique violation text maps to duplicate", func(t *testing.T) {
		repo, mock := mockRepo(t)
		mock.ExpectExec("INSERT INTO applications").
			WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: applications.job_id, applications.applicant_id (2067)"))

		_, err := repo.CreateApplication(ctx, &models.Application{JobID: "j1", ApplicantID: "u1", Message: "hi"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("decide rolls back on cascade failure", func(t *testing.T) {
		repo, mock := mockRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE applications SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE jobs SET status").WillReturnError(errDiskIO)
		mock.ExpectRollback()

		changed, err := repo.DecideApplication(ctx, repository.DecisionChange{
			ApplicationID: "a1", JobID: "j1", Status: models.ApplicationAccepted, FillJob: true,
		})
		assert.False(t, changed)
		assert.ErrorIs(t, err, errDiskIO)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("decide on already decided application", func(t *testing.T) {
		repo, mock := mockRepo(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE applications SET status").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		changed, err := repo.DecideApplication(ctx, repository.DecisionChange{
			ApplicationID: "a1", JobID: "j1", Status: models.ApplicationRejected,
		})
		assert.False(t, changed)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
