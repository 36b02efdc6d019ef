package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// profileService handles profile and directory business logic.
type profileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(db *gorm.DB) ProfileServicer {
	return &profileService{db: db}
}

// CreateProfile registers a new employee profile. Self-service registration
// always creates a plain employee; roles and manager links come from the
// directory sync.
func (s *profileService) CreateProfile(email, password, firstName, lastName, department string) (*models.Profile, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	s.db.Model(&models.Profile{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	profile := &models.Profile{
		Email:      strings.ToLower(email),
		Password:   string(hashedPassword),
		FirstName:  firstName,
		LastName:   lastName,
		Department: department,
		Role:       models.RoleEmployee,
		IsActive:   true,
	}

	if err := s.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return profile, nil
}

// GetProfileByEmail retrieves an active profile by email.
func (s *profileService) GetProfileByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

// GetProfileByID retrieves a profile by ID.
func (s *profileService) GetProfileByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

// VerifyPassword checks if the provided password matches the stored hash.
func (s *profileService) VerifyPassword(profile *models.Profile, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password))
	return err == nil
}

// AttemptLogin authenticates a profile by email and password, enforcing a
// temporary lockout after repeated failures. Invalid email and invalid
// password return the same error so the response does not reveal which
// accounts exist.
func (s *profileService) AttemptLogin(email, password string) (*models.Profile, error) {
	profile, err := s.GetProfileByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if profile.LockedUntil != nil && profile.LockedUntil.After(time.Now()) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(profile, password) {
		attempts := profile.FailedLoginAttempts + 1
		updates := map[string]interface{}{"failed_login_attempts": attempts}
		if attempts >= maxFailedLogins {
			lockedUntil := time.Now().Add(lockoutDuration)
			updates["locked_until"] = lockedUntil
			updates["failed_login_attempts"] = 0
		}
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(profile).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	profile.LastLoginAt = &now

	return profile, nil
}

// StoreRefreshTokenHash persists the hash of the profile's current refresh token.
func (s *profileService) StoreRefreshTokenHash(profileID uint, tokenHash string) error {
	if err := s.db.Model(&models.Profile{}).Where("id = ?", profileID).
		Update("refresh_token_hash", tokenHash).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a profile.
func (s *profileService) GetRefreshTokenHash(profileID uint) (string, error) {
	profile, err := s.GetProfileByID(profileID)
	if err != nil {
		return "", err
	}
	return profile.RefreshTokenHash, nil
}

// UpsertDirectoryEntry creates or updates a profile from an HR directory
// record. Synced profiles that have never logged in get a placeholder
// password hash; the manager link is resolved by email and must not point
// at the profile itself.
func (s *profileService) UpsertDirectoryEntry(entry DirectoryEntry) (*models.Profile, error) {
	email := strings.ToLower(entry.Email)
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	if strings.EqualFold(entry.ManagerEmail, entry.Email) {
		return nil, apperrors.ErrSelfManager
	}

	var managerID *uint
	if entry.ManagerEmail != "" {
		manager, err := s.GetProfileByEmail(entry.ManagerEmail)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrProfileNotFound,
				"Manager profile not found for "+strings.ToLower(entry.ManagerEmail))
		}
		managerID = &manager.ID
	}

	var profile models.Profile
	err := s.db.Where("email = ?", email).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.Profile{
			Email:      email,
			Password:   directorySeedPassword(),
			FirstName:  entry.FirstName,
			LastName:   entry.LastName,
			Department: entry.Department,
			Role:       entry.Role,
			ManagerID:  managerID,
			IsActive:   true,
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		updates := map[string]interface{}{
			"first_name": entry.FirstName,
			"last_name":  entry.LastName,
			"department": entry.Department,
			"role":       entry.Role,
			"manager_id": managerID,
		}
		if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return &profile, nil
}

// directorySeedPassword returns an unusable bcrypt hash for synced profiles
// that have not set a password yet. Login requires a password reset first.
func directorySeedPassword() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(time.Now().String()), bcrypt.MinCost)
	if err != nil {
		return ""
	}
	return string(hash)
}
