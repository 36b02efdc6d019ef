package models

import "time"

// Role classifies what an employee profile is allowed to do beyond
// owning its own plans.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// IsHR reports whether the role carries HR/admin capabilities.
// HR and admin actors may also act as proxy managers for any employee.
func (r Role) IsHR() bool {
	return r == RoleHR || r == RoleAdmin
}

// Profile represents an employee profile in the directory.
// ManagerID is a self-reference to the profile of the employee's
// direct manager and drives the manager review inbox.
type Profile struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Department          string     `json:"department"`
	Role                Role       `gorm:"not null;default:'employee'" json:"role"`
	ManagerID           *uint      `gorm:"index" json:"manager_id,omitempty"`
	Manager             *Profile   `gorm:"foreignKey:ManagerID" json:"-"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	GoalPlans []GoalPlan `gorm:"foreignKey:ProfileID" json:"goal_plans,omitempty"`
}

// DisplayName returns the name shown in review inboxes. Falls back to the
// email when the profile has no name set.
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return p.Email
	}
}
