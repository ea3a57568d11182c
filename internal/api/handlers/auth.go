package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/medisight/medisight-go/internal/database"
	"github.com/medisight/medisight-go/internal/middleware"
	"github.com/medisight/medisight-go/internal/models"
)

// AuthHandler issues JWT tokens for clinician accounts.
type AuthHandler struct {
	clinicians *database.ClinicianRepository
	auth       *middleware.AuthMiddleware
	tokenTTL   time.Duration
	logger     *logrus.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(clinicians *database.ClinicianRepository, auth *middleware.AuthMiddleware, tokenTTL time.Duration, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		clinicians: clinicians,
		auth:       auth,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// Login verifies clinician credentials and issues a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	clinician, err := h.clinicians.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrClinicianNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.logger.WithError(err).Error("Clinician lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(clinician.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.auth.GenerateToken(clinician.ID, clinician.Email, clinician.Role, h.tokenTTL)
	if err != nil {
		h.logger.WithError(err).Error("Token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenTTL),
		Clinician: *clinician,
	})
}
