package repository

import (
	"regexp"
	"testing"
	"time"

	"backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock
}

func TestCreate_MapsUniqueViolationToDuplicate(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	hash := "$2a$10$abcdefghijklmnopqrstuv"
	err := repo.Create(&models.User{
		Name: "Ann", Email: "ann@x.com", Username: "ann",
		PasswordHash: &hash, Role: models.RoleUser,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ScansAssignedColumns(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	memberSince := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_since"}).AddRow(int64(5), memberSince))

	user := &models.User{Name: "Ann", Email: "ann@x.com", Username: "ann", Role: models.RoleUser}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, memberSince, user.MemberSince)
}

func TestGetByUsername_NoRows(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetVerified_ReportsRowExistence(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET verified = true`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.SetVerified(1)
	require.NoError(t, err)
	assert.True(t, found)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET verified = true`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err = repo.SetVerified(2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateProfile_WithAndWithoutPassword(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET name = $1, email = $2, img = $3 WHERE id = $4`)).
		WithArgs("Ann", "ann@x.com", nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(1, "Ann", "ann@x.com", nil, nil))

	hash := "$2a$10$abcdefghijklmnopqrstuv"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET name = $1, email = $2, img = $3, password_hash = $4 WHERE id = $5`)).
		WithArgs("Ann", "ann@x.com", nil, hash, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(1, "Ann", "ann@x.com", nil, &hash))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_MissingRow(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(9), ErrNotFound)
}
