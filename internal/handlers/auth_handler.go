package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/middleware"
	"peopleops/internal/services"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	profileService services.ProfileServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(profileService services.ProfileServicer) *AuthHandler {
	return &AuthHandler{profileService: profileService}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	FirstName  string `json:"first_name" binding:"max=100"`
	LastName   string `json:"last_name" binding:"max=100"`
	Department string `json:"department" binding:"max=100"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ProfileResponse represents profile data in auth responses.
type ProfileResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// AuthResponse represents the authentication response with tokens.
type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Profile      ProfileResponse `json:"profile"`
}

// Register handles employee self-registration. New registrations always get
// the employee role; manager and HR assignments come from the directory sync.
// @Summary     Register a new profile
// @Description Register a new employee profile with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "Registration data"
// @Success     201 {object} AuthResponse "Profile registered and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	profile, err := h.profileService.CreateProfile(req.Email, req.Password, req.FirstName, req.LastName, req.Department)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.issueTokens(c, http.StatusCreated, profile.ID)
}

// Login handles profile login.
// @Summary     Login
// @Description Authenticate a profile and get access and refresh tokens
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Login credentials"
// @Success     200 {object} AuthResponse "Authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	profile, err := h.profileService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.issueTokens(c, http.StatusOK, profile.ID)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new access/refresh token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	// the token must match the single stored hash; rotation invalidates
	// older refresh tokens
	storedHash, err := h.profileService.GetRefreshTokenHash(claims.ProfileID)
	if err != nil || storedHash != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	h.issueTokens(c, http.StatusOK, claims.ProfileID)
}

// GetProfile returns the authenticated profile.
// @Summary     Get own profile
// @Description Get the authenticated employee profile
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ProfileResponse "Profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.profileService.GetProfileByID(profileID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": ProfileResponse{
		ID:         profile.ID,
		Email:      profile.Email,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Department: profile.Department,
		Role:       string(profile.Role),
	}})
}

// issueTokens generates, stores, and returns a fresh token pair for a profile.
func (h *AuthHandler) issueTokens(c *gin.Context, status int, profileID uint) {
	profile, err := h.profileService.GetProfileByID(profileID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, err := middleware.GenerateAccessToken(profile)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	refreshToken, err := middleware.GenerateRefreshToken(profile)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	if err := h.profileService.StoreRefreshTokenHash(profile.ID, middleware.HashToken(refreshToken)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"profile": ProfileResponse{
			ID:         profile.ID,
			Email:      profile.Email,
			FirstName:  profile.FirstName,
			LastName:   profile.LastName,
			Department: profile.Department,
			Role:       string(profile.Role),
		},
	})
}
