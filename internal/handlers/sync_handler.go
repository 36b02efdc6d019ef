package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
	"peopleops/internal/services"
)

// SyncHandler receives directory pushes from the upstream HR system. Roles
// and manager assignments only change through this channel.
type SyncHandler struct {
	profileService services.ProfileServicer
	auditService   services.AuditServicer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(profileService services.ProfileServicer, auditService services.AuditServicer) *SyncHandler {
	return &SyncHandler{profileService: profileService, auditService: auditService}
}

// DirectoryEntryRequest is one directory record in a sync push.
type DirectoryEntryRequest struct {
	Email        string `json:"email" binding:"required,email"`
	FirstName    string `json:"first_name" binding:"max=100"`
	LastName     string `json:"last_name" binding:"max=100"`
	Department   string `json:"department" binding:"max=100"`
	Role         string `json:"role" binding:"required,profile_role"`
	ManagerEmail string `json:"manager_email" binding:"omitempty,email"`
}

// SyncRequest is a batch of directory records.
type SyncRequest struct {
	Entries []DirectoryEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// SyncResultResponse reports the outcome of a directory push.
type SyncResultResponse struct {
	Synced int      `json:"synced"`
	Errors []string `json:"errors,omitempty"`
}

// SyncDirectory upserts a batch of directory records. Each entry is applied
// independently; one bad record does not abort the batch.
// @Summary     Sync directory
// @Description Upsert profiles, roles, and manager assignments from the HR directory
// @Tags        internal
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string      true "Sync API key"
// @Param       request   body   SyncRequest true "Directory entries"
// @Success     200 {object} SyncResultResponse "Sync outcome"
// @Failure     400 {object} ErrorResponse "Invalid payload"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Router      /internal/directory/sync [post]
func (h *SyncHandler) SyncDirectory(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result := SyncResultResponse{}
	for _, entry := range req.Entries {
		profile, err := h.profileService.UpsertDirectoryEntry(services.DirectoryEntry{
			Email:        entry.Email,
			FirstName:    entry.FirstName,
			LastName:     entry.LastName,
			Department:   entry.Department,
			Role:         models.Role(entry.Role),
			ManagerEmail: entry.ManagerEmail,
		})
		if err != nil {
			result.Errors = append(result.Errors, entry.Email+": "+err.Error())
			continue
		}

		result.Synced++
		h.auditService.Log(profile.ID, "DIRECTORY_SYNC", "profile", profile.ID, "", "", c.ClientIP(),
			map[string]interface{}{"role": entry.Role, "manager_email": entry.ManagerEmail})
	}

	c.JSON(http.StatusOK, result)
}
