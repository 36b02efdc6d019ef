package services

import (
	"time"

	"peopleops/internal/models"
	"peopleops/internal/pagination"
	"peopleops/internal/workflow"
)

// ProfileServicer defines the contract for profile and directory logic.
type ProfileServicer interface {
	CreateProfile(email, password, firstName, lastName, department string) (*models.Profile, error)
	GetProfileByEmail(email string) (*models.Profile, error)
	GetProfileByID(id uint) (*models.Profile, error)
	VerifyPassword(profile *models.Profile, password string) bool
	AttemptLogin(email, password string) (*models.Profile, error)
	StoreRefreshTokenHash(profileID uint, tokenHash string) error
	GetRefreshTokenHash(profileID uint) (string, error)
	UpsertDirectoryEntry(entry DirectoryEntry) (*models.Profile, error)
}

// DirectoryEntry is one record pushed by the upstream HR directory sync.
// Role and manager assignments flow in through this channel, never through
// self-service registration.
type DirectoryEntry struct {
	Email        string
	FirstName    string
	LastName     string
	Department   string
	Role         models.Role
	ManagerEmail string
}

// ItemInput is one goal item as carried by a create, edit, or
// approve-with-edits request.
type ItemInput struct {
	ItemID    string `json:"item_id"`
	Client    string `json:"client"`
	Bucket    string `json:"bucket"`
	LineItem  string `json:"line_item"`
	Weightage int    `json:"weightage"`
	Target    string `json:"target"`
}

// ActualInput records the actual result against one approved item.
type ActualInput struct {
	ItemID string `json:"item_id"`
	Actual string `json:"actual"`
}

// TransitionInput carries the payload of a workflow action. Revision is the
// plan revision the caller last read; a mismatch fails the transition.
type TransitionInput struct {
	Revision     int
	ReviewerNote string
	Items        []ItemInput
	Actuals      []ActualInput
}

// PlanSummary is the review-inbox projection of a plan: the plan joined
// with the owner's display profile. Owner fields fall back to placeholders
// when the profile is missing rather than failing the view.
type PlanSummary struct {
	PlanID          uint              `json:"plan_id"`
	ProfileID       uint              `json:"profile_id"`
	OwnerName       string            `json:"owner_name"`
	OwnerDepartment string            `json:"owner_department"`
	Month           time.Time         `json:"month"`
	Status          models.PlanStatus `json:"status"`
	StatusLabel     string            `json:"status_label"`
	TotalWeightage  int               `json:"total_weightage"`
	Revision        int               `json:"revision"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// GoalPlanServicer defines the contract for the goal plan workflow.
type GoalPlanServicer interface {
	CreatePlan(profileID uint, month time.Time, items []ItemInput) (*models.GoalPlan, bool, error)
	GetPlanByID(actorID, planID uint) (*models.GoalPlan, error)
	GetPlanForMonth(profileID uint, month time.Time) (*models.GoalPlan, error)
	GetMyPlans(profileID uint, page pagination.PageRequest) (*pagination.PageResponse[models.GoalPlan], error)
	UpdateDraftItems(actorID, planID uint, revision int, items []ItemInput) (*models.GoalPlan, error)
	DeletePlan(actorID, planID uint) error
	Transition(actorID, planID uint, action workflow.Action, input TransitionInput) (*models.GoalPlan, error)
	GetDirectReportsPending(managerID uint, page pagination.PageRequest) (*pagination.PageResponse[PlanSummary], error)
	GetHRPending(actorID uint, page pagination.PageRequest) (*pagination.PageResponse[PlanSummary], error)
}

// AuditServicer defines the contract for the append-only workflow audit log.
type AuditServicer interface {
	Log(profileID uint, action, resourceType string, resourceID uint, from, to models.PlanStatus, ipAddress string, changes map[string]any)
}
