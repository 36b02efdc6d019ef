package models

import (
	"time"

	"peopleops/internal/uuid"

	"gorm.io/gorm"
)

// PlanStatus is the lifecycle status of a goal plan. Transitions between
// statuses are governed by the workflow package's transition table; nothing
// else should assign these values.
type PlanStatus string

const (
	PlanStatusDraft                PlanStatus = "draft"
	PlanStatusPendingApproval      PlanStatus = "pending_approval"
	PlanStatusPendingHRApproval    PlanStatus = "pending_hr_approval"
	PlanStatusApproved             PlanStatus = "approved"
	PlanStatusRejected             PlanStatus = "rejected"
	PlanStatusPendingEditApproval  PlanStatus = "pending_edit_approval"
	PlanStatusPendingScoreApproval PlanStatus = "pending_score_approval"
	PlanStatusCompleted            PlanStatus = "completed"
)

// ItemStage distinguishes the canonical item set from a proposed edit that
// has not been re-approved yet. Approved content stays authoritative until a
// reviewer promotes the proposed rows.
type ItemStage string

const (
	ItemStageCurrent  ItemStage = "current"
	ItemStageProposed ItemStage = "proposed"
)

// GoalItem is a single weighted line item within a goal plan.
// ItemID is stable across edits so actuals can be matched back to targets.
type GoalItem struct {
	Base
	GoalPlanID uint      `gorm:"not null;index" json:"-"`
	ItemID     string    `gorm:"type:uuid;not null;index" json:"item_id"`
	Stage      ItemStage `gorm:"not null;default:'current';index" json:"-"`
	Position   int       `gorm:"not null" json:"position"`
	Client     string    `json:"client"`
	Bucket     string    `json:"bucket"`
	LineItem   string    `json:"line_item"`
	Weightage  int       `gorm:"not null;default:0" json:"weightage"`
	Target     string    `json:"target"`
	Actual     *string   `json:"actual,omitempty"`
}

// BeforeCreate assigns a fresh item identifier when the client did not
// provide one (new rows added in the editor).
func (i *GoalItem) BeforeCreate(tx *gorm.DB) error {
	if i.ItemID == "" {
		i.ItemID = uuid.New()
	}
	return nil
}

// GoalPlan is the monthly per-employee container of weighted goal items and
// its approval status. One plan may exist per (profile, month); the pair is
// backed by a unique index so concurrent creates cannot produce duplicates.
type GoalPlan struct {
	Base
	ProfileID     uint       `gorm:"not null;uniqueIndex:idx_goal_plans_profile_month" json:"profile_id"`
	Profile       *Profile   `gorm:"foreignKey:ProfileID" json:"-"`
	Month         time.Time  `gorm:"type:date;not null;uniqueIndex:idx_goal_plans_profile_month" json:"month"`
	Status        PlanStatus `gorm:"not null;default:'draft';index" json:"status"`
	ReviewerNotes *string    `json:"reviewer_notes,omitempty"`
	Revision      int        `gorm:"not null;default:1" json:"revision"`
	Items         []GoalItem `gorm:"foreignKey:GoalPlanID" json:"items,omitempty"`
}

// CurrentItems returns the canonical item set in display order.
func (p *GoalPlan) CurrentItems() []GoalItem {
	return p.itemsInStage(ItemStageCurrent)
}

// ProposedItems returns the proposed edit awaiting re-approval, if any.
func (p *GoalPlan) ProposedItems() []GoalItem {
	return p.itemsInStage(ItemStageProposed)
}

func (p *GoalPlan) itemsInStage(stage ItemStage) []GoalItem {
	items := make([]GoalItem, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Stage == stage {
			items = append(items, item)
		}
	}
	return items
}
