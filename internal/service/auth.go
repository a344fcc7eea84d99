package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/mailer"
	"backend/internal/models"
	"backend/internal/oauth"
	"backend/internal/repository"
	"backend/internal/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ( // Define custom errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account is not verified")
	ErrNoPasswordSet      = errors.New("account has no password set")
	ErrEmailDelivery      = errors.New("verification email delivery failed")
)

type AuthService interface {
	// Register creates an unverified account and sends the verification
	// email. A delivery failure is reported as ErrEmailDelivery with the
	// created user still returned; the account is not rolled back.
	Register(name, email, username, password string, birthday *time.Time) (*models.User, error)
	Login(username, password string) (*models.User, error)
	// GoogleLogin resolves the Google account to a local user, creating
	// one on first sight. The bool reports whether an account was created.
	GoogleLogin(ctx context.Context, code string) (*models.User, bool, error)
	VerifyEmail(tokenString string) error
}

type authService struct {
	users          repository.UserRepository
	codec          *token.Codec
	mailer         mailer.Mailer
	google         oauth.GoogleClient
	frontendOrigin string
	logger         *zap.Logger
}

func NewAuthService(users repository.UserRepository, codec *token.Codec, m mailer.Mailer,
	google oauth.GoogleClient, frontendOrigin string, logger *zap.Logger) AuthService {
	return &authService{
		users:          users,
		codec:          codec,
		mailer:         m,
		google:         google,
		frontendOrigin: frontendOrigin,
		logger:         logger,
	}
}

func (s *authService) Register(name, email, username, password string, birthday *time.Time) (*models.User, error) {
	taken, err := s.credentialsTaken(email, username)
	if err != nil {
		s.logger.Error("Failed to check existing users", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashString := string(hash)

	user := &models.User{
		Name:         name,
		Email:        email,
		Username:     username,
		PasswordHash: &hashString,
		Role:         models.RoleUser,
		Verified:     false,
		Birthday:     birthday,
	}

	if err := s.users.Create(user); err != nil {
		// A concurrent registration may win the pre-check race; the
		// store's unique constraint is authoritative.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.sendVerificationEmail(user); err != nil {
		s.logger.Error("Failed to send verification email",
			zap.Int64("user_id", user.ID), zap.Error(err))
		return user, ErrEmailDelivery
	}

	return user, nil
}

func (s *authService) credentialsTaken(email, username string) (bool, error) {
	if _, err := s.users.GetByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if _, err := s.users.GetByUsername(username); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (s *authService) sendVerificationEmail(user *models.User) error {
	verifyToken, err := s.codec.Issue(token.KindVerify, user.ID, token.VerifyTTL)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.frontendOrigin, verifyToken)
	body := fmt.Sprintf(`<p>Click the link to verify your account:</p><a href="%s">%s</a>`, verifyURL, verifyURL)

	return s.mailer.Send(user.Email, "Verify your account", body)
}

func (s *authService) Login(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to get user by username", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}

	if user.PasswordHash == nil {
		return nil, ErrNoPasswordSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in successfully.", zap.String("username", user.Username))
	return user, nil
}

func (s *authService) GoogleLogin(ctx context.Context, code string) (*models.User, bool, error) {
	rawIDToken, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, false, fmt.Errorf("google code exchange failed: %w", err)
	}

	profile, err := s.google.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, false, fmt.Errorf("google id token verification failed: %w", err)
	}

	user, err := s.users.GetByEmail(profile.Email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, false, fmt.Errorf("failed to retrieve user: %w", err)
	}

	username, _, _ := strings.Cut(profile.Email, "@")
	name := profile.Name
	if name == "" {
		name = username
	}

	// Google has already verified the address, so the account skips the
	// email verification flow and carries no password.
	user = &models.User{
		Name:     name,
		Email:    profile.Email,
		Username: username,
		Role:     models.RoleUser,
		Verified: true,
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent login for the same new email won the insert
			// race; the existing row is the canonical account.
			existing, readErr := s.users.GetByEmail(profile.Email)
			if readErr != nil {
				s.logger.Error("Failed to re-read user after duplicate insert", zap.Error(readErr))
				return nil, false, fmt.Errorf("failed to retrieve user: %w", readErr)
			}
			return existing, false, nil
		}
		s.logger.Error("Failed to create user via Google login", zap.Error(err))
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered via Google login.", zap.String("username", user.Username))
	return user, true, nil
}

func (s *authService) VerifyEmail(tokenString string) error {
	userID, err := s.codec.Verify(token.KindVerify, tokenString)
	if err != nil {
		return err
	}

	found, err := s.users.SetVerified(userID)
	if err != nil {
		s.logger.Error("Failed to update verified flag", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to update verified flag: %w", err)
	}
	// An already-verified row still counts as found, so re-verification
	// is idempotent; only a deleted account reaches this branch.
	if !found {
		return ErrUserNotFound
	}
	return nil
}
