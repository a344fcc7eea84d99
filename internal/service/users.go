package service

import (
	"errors"
	"fmt"

	"backend/internal/models"
	"backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Profile(id int64) (*models.User, error)
	// UpdateProfile updates name, email and image; a non-empty
	// newPassword is rehashed and stored as well.
	UpdateProfile(id int64, name, email string, img *string, newPassword string) error
	Delete(id int64) error
}

type userService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{users: users, logger: logger}
}

func (s *userService) Profile(id int64) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to get user by id", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(id int64, name, email string, img *string, newPassword string) error {
	var passwordHash *string
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("Failed to hash password", zap.Error(err))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hashString := string(hash)
		passwordHash = &hashString
	}

	if err := s.users.UpdateProfile(id, name, email, img, passwordHash); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		}
		s.logger.Error("Failed to update profile", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *userService) Delete(id int64) error {
	if err := s.users.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("Failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
