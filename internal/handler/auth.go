package handler

import (
	"errors"
	"net/http"
	"time"

	"backend/internal/service"
	"backend/internal/session"
	"backend/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	GoogleLogin(c *gin.Context)
	VerifyEmail(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	sessions    *session.Manager
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, sessions *session.Manager, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, sessions: sessions, log: log}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6"`
	Birthday string `json:"birthday" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for registration: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format."})
		return
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Username, req.Password, &birthday)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists with this email or username."})
		case errors.Is(err, service.ErrEmailDelivery):
			// The account exists; only delivery failed.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User registered, but email verification failed. Please contact support."})
		default:
			h.log.Errorf("Failed to register user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User created. Please verify your email.",
		"id":       user.ID,
		"username": user.Username,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for login: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Incorrect username or password"})
		case errors.Is(err, service.ErrNotVerified):
			// Soft block, not an auth failure: no cookie is set.
			c.JSON(http.StatusOK, gin.H{"message": "Please verify your email before logging in."})
		case errors.Is(err, service.ErrNoPasswordSet):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This account was created with Google. Please use Google login."})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect username or password"})
		default:
			h.log.Errorf("Failed to login user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		}
		return
	}

	if _, err := h.sessions.Establish(c, user.ID); err != nil {
		h.log.Errorf("Failed to establish session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

func (h *authHandler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for Google login: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, isNew, err := h.authService.GoogleLogin(c.Request.Context(), req.Code)
	if err != nil {
		h.log.Errorf("Google login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google login failed. Please try again."})
		return
	}

	if _, err := h.sessions.Establish(c, user.ID); err != nil {
		h.log.Errorf("Failed to establish session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google login failed. Please try again."})
		return
	}

	message := "Login successful"
	if isNew {
		message = "Registered and logged in successfully with Google"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}

func (h *authHandler) VerifyEmail(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification token is missing."})
		return
	}

	if err := h.authService.VerifyEmail(tokenString); err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			c.JSON(http.StatusForbidden, gin.H{"error": "Verification link has expired. Please request a new one."})
		case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrSignatureInvalid):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid verification link."})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		default:
			h.log.Errorf("Email verification failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Email verification failed. Please try again later."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully."})
}

func (h *authHandler) Logout(c *gin.Context) {
	h.sessions.Revoke(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful."})
}
