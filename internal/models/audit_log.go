package models

// AuditLog records every workflow action as an append-only history entry.
// Plans past draft are never hard-deleted, so together with these rows the
// full approval trail of a plan can be reconstructed.
type AuditLog struct {
	Base
	ProfileID    uint       `gorm:"not null;index" json:"profile_id"`
	Action       string     `gorm:"not null" json:"action"`
	ResourceType string     `gorm:"not null" json:"resource_type"`
	ResourceID   uint       `json:"resource_id"`
	FromStatus   PlanStatus `json:"from_status,omitempty"`
	ToStatus     PlanStatus `json:"to_status,omitempty"`
	IPAddress    string     `json:"ip_address"`
	Changes      string     `json:"changes,omitempty"`
}
