package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"peopleops/internal/logger"
	"peopleops/internal/models"
)

// auditService records workflow actions as append-only history.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event, including the status movement for workflow
// transitions. Errors are logged but never propagate so a failed audit
// write cannot disrupt the transition it describes.
func (s *auditService) Log(profileID uint, action, resourceType string, resourceID uint, from, to models.PlanStatus, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		ProfileID:    profileID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		FromStatus:   from,
		ToStatus:     to,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"profile_id", profileID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
