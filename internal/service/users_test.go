package service

import (
	"testing"

	"backend/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo, AuthService) {
	t.Helper()
	repo := newFakeUserRepo()
	auth := NewAuthService(repo, token.NewCodec([]byte("test-secret")), &fakeMailer{}, &fakeGoogle{}, frontendOrigin, zap.NewNop())
	return NewUserService(repo, zap.NewNop()), repo, auth
}

func TestUpdateProfile_RehashesNewPassword(t *testing.T) {
	t.Parallel()

	svc, repo, auth := newTestUserService(t)
	user := registerAnn(t, auth)

	require.NoError(t, svc.UpdateProfile(user.ID, "Ann B", "ann@x.com", nil, "newsecret"))

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", stored.Name)
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("newsecret")))
}

func TestUpdateProfile_KeepsPasswordWhenEmpty(t *testing.T) {
	t.Parallel()

	svc, repo, auth := newTestUserService(t)
	user := registerAnn(t, auth)
	originalHash := *user.PasswordHash

	require.NoError(t, svc.UpdateProfile(user.ID, "Ann B", "ann@x.com", nil, ""))

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.Equal(t, originalHash, *stored.PasswordHash)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	t.Parallel()

	svc, _, auth := newTestUserService(t)
	user := registerAnn(t, auth)
	_, err := auth.Register("Bob", "bob@x.com", "bob", "secret2", nil)
	require.NoError(t, err)

	err = svc.UpdateProfile(user.ID, "Ann", "bob@x.com", nil, "")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestDelete_MissingUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestUserService(t)
	assert.ErrorIs(t, svc.Delete(42), ErrUserNotFound)
}
