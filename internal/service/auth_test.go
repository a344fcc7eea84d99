package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"backend/internal/models"
	"backend/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const frontendOrigin = "http://localhost:5173"

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo, *fakeMailer, *fakeGoogle, *token.Codec) {
	t.Helper()
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	google := &fakeGoogle{}
	codec := token.NewCodec([]byte("test-secret"))
	svc := NewAuthService(repo, codec, mail, google, frontendOrigin, zap.NewNop())
	return svc, repo, mail, google, codec
}

func registerAnn(t *testing.T, svc AuthService) *models.User {
	t.Helper()
	birthday := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	user, err := svc.Register("Ann", "ann@x.com", "ann", "secret1", &birthday)
	require.NoError(t, err)
	return user
}

func TestRegister_CreatesUnverifiedUserWithHashedPassword(t *testing.T) {
	t.Parallel()

	svc, _, mail, _, _ := newTestAuthService(t)

	user := registerAnn(t, svc)

	assert.False(t, user.Verified)
	assert.Equal(t, models.RoleUser, user.Role)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", *user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("secret1")))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ann@x.com", mail.sent[0].to)
	assert.Contains(t, mail.sent[0].body, frontendOrigin+"/verify?token=")
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestAuthService(t)
	registerAnn(t, svc)

	_, err := svc.Register("Ann Again", "ann@x.com", "ann2", "secret2", nil)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register("Other Ann", "other@x.com", "ann", "secret2", nil)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegister_EmailFailureDoesNotRollBackAccount(t *testing.T) {
	t.Parallel()

	svc, repo, mail, _, _ := newTestAuthService(t)
	mail.fail = true

	user, err := svc.Register("Ann", "ann@x.com", "ann", "secret1", nil)
	assert.ErrorIs(t, err, ErrEmailDelivery)
	require.NotNil(t, user)

	// The account row survives the delivery failure.
	stored, err := repo.GetByEmail("ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.False(t, stored.Verified)
}

func TestLogin_Branches(t *testing.T) {
	t.Parallel()

	svc, repo, _, _, _ := newTestAuthService(t)
	user := registerAnn(t, svc)

	_, err := svc.Login("nobody", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Correct credentials on an unverified account are a soft block, not
	// an auth failure.
	_, err = svc.Login("ann", "secret1")
	assert.ErrorIs(t, err, ErrNotVerified)

	found, err := repo.SetVerified(user.ID)
	require.NoError(t, err)
	require.True(t, found)

	_, err = svc.Login("ann", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := svc.Login("ann", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLogin_GoogleOnlyAccount(t *testing.T) {
	t.Parallel()

	svc, _, _, google, _ := newTestAuthService(t)
	google.email = "bob@x.com"
	google.name = "Bob"

	_, _, err := svc.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)

	_, err = svc.Login("bob", "whatever")
	assert.ErrorIs(t, err, ErrNoPasswordSet)
}

func TestVerifyEmail_FullScenario(t *testing.T) {
	t.Parallel()

	svc, _, mail, _, _ := newTestAuthService(t)
	user := registerAnn(t, svc)

	_, err := svc.Login("ann", "secret1")
	require.ErrorIs(t, err, ErrNotVerified)

	require.Len(t, mail.sent, 1)
	verifyToken := tokenFromBody(t, mail.sent[0].body)

	require.NoError(t, svc.VerifyEmail(verifyToken))

	loggedIn, err := svc.Login("ann", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// Re-verification is idempotent.
	assert.NoError(t, svc.VerifyEmail(verifyToken))
}

func TestVerifyEmail_Failures(t *testing.T) {
	t.Parallel()

	svc, _, _, _, codec := newTestAuthService(t)

	expired, err := codec.Issue(token.KindVerify, 1, -time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.VerifyEmail(expired), token.ErrExpired)

	assert.ErrorIs(t, svc.VerifyEmail("not.a.jwt"), token.ErrMalformed)

	// A session token must not be consumable as a verification token.
	sessionToken, err := codec.Issue(token.KindSession, 1, time.Hour)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.VerifyEmail(sessionToken), token.ErrMalformed)

	// User deleted between issuance and consumption.
	gone, err := codec.Issue(token.KindVerify, 999, time.Hour)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.VerifyEmail(gone), ErrUserNotFound)
}

func TestGoogleLogin_CreatesThenReuses(t *testing.T) {
	t.Parallel()

	svc, _, _, google, _ := newTestAuthService(t)
	google.email = "bob@x.com"
	google.name = "Bob"

	user, isNew, err := svc.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "bob", user.Username)
	assert.True(t, user.Verified)
	assert.Nil(t, user.PasswordHash)

	again, isNew, err := svc.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, user.ID, again.ID)
}

func TestGoogleLogin_DuplicateInsertRaceFallsBackToReRead(t *testing.T) {
	t.Parallel()

	svc, repo, _, google, _ := newTestAuthService(t)
	google.email = "bob@x.com"
	google.name = "Bob"

	// The concurrent winner's row already exists; this request's
	// pre-insert lookup misses it, so its insert hits the unique
	// constraint and must fall back to a re-read.
	winner := &models.User{Name: "Bob", Email: "bob@x.com", Username: "bob", Role: models.RoleUser, Verified: true}
	require.NoError(t, repo.Create(winner))
	repo.missEmailLookups = 1

	user, isNew, err := svc.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, winner.ID, user.ID)
}

func tokenFromBody(t *testing.T, body string) string {
	t.Helper()
	_, after, found := strings.Cut(body, "token=")
	require.True(t, found, "no token in email body")
	end := strings.IndexAny(after, `"<`)
	require.Greater(t, end, 0)
	return after[:end]
}
