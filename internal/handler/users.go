package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler interface {
	Profile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	DeleteAccount(c *gin.Context)
}

type userHandler struct {
	userService service.UserService
	sessions    *session.Manager
	log         *logrus.Logger
}

func NewUserHandler(userService service.UserService, sessions *session.Manager, log *logrus.Logger) UserHandler {
	return &userHandler{userService: userService, sessions: sessions, log: log}
}

type UpdateProfileRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Img         *string `json:"img"`
	NewPassword string  `json:"newPassword" binding:"omitempty,min=6"`
}

func (h *userHandler) Profile(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	user, err := h.userService.Profile(identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Errorf("Failed to load profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *userHandler) UpdateProfile(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for profile update: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.userService.UpdateProfile(identity.UserID, req.Name, req.Email, req.Img, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already in use."})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			h.log.Errorf("Failed to update profile: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile update failed."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (h *userHandler) DeleteAccount(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	if err := h.userService.Delete(identity.UserID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found or already deleted."})
			return
		}
		h.log.Errorf("Failed to delete user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User deletion failed."})
		return
	}

	h.sessions.Revoke(c)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}
