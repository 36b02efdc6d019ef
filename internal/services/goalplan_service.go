package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
	"peopleops/internal/pagination"
	"peopleops/internal/workflow"
)

// reviewPendingStatuses are the statuses that land in a manager's inbox.
var reviewPendingStatuses = []models.PlanStatus{
	models.PlanStatusPendingApproval,
	models.PlanStatusPendingEditApproval,
	models.PlanStatusPendingScoreApproval,
}

// goalPlanService handles goal plan workflow business logic.
type goalPlanService struct {
	db *gorm.DB
}

// NewGoalPlanService creates a new GoalPlanServicer.
func NewGoalPlanService(db *gorm.DB) GoalPlanServicer {
	return &goalPlanService{db: db}
}

// NormalizeMonth truncates a date to the first of its month in UTC, the
// canonical representation for a plan's month column.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CreatePlan creates a draft plan for the given month. Creation is
// idempotent per (profile, month): when a plan already exists it is
// returned unchanged and the second return value is false. The unique
// index on (profile_id, month) closes the race between concurrent creates.
func (s *goalPlanService) CreatePlan(profileID uint, month time.Time, items []ItemInput) (*models.GoalPlan, bool, error) {
	month = NormalizeMonth(month)

	existing, err := s.GetPlanForMonth(profileID, month)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrPlanNotFound) {
		return nil, false, err
	}

	plan := &models.GoalPlan{
		ProfileID: profileID,
		Month:     month,
		Status:    models.PlanStatusDraft,
		Revision:  1,
		Items:     itemsFromInput(items, models.ItemStageCurrent),
	}

	if err := s.db.Create(plan).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the create race; the winner's plan is the one plan for this month
			existing, ferr := s.GetPlanForMonth(profileID, month)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created, err := s.loadPlan(plan.ID)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetPlanByID returns a plan visible to the actor: its owner, the owner's
// manager, or any HR/admin profile.
func (s *goalPlanService) GetPlanByID(actorID, planID uint) (*models.GoalPlan, error) {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(actorID, plan)
	if err != nil {
		return nil, err
	}
	if !actor.OwnsPlan && !actor.ManagesOwner && !actor.IsHR {
		return nil, apperrors.ErrForbidden
	}

	return plan, nil
}

// GetPlanForMonth returns the owner's plan for the given month, if any.
func (s *goalPlanService) GetPlanForMonth(profileID uint, month time.Time) (*models.GoalPlan, error) {
	var plan models.GoalPlan
	err := s.planQuery().
		Where("profile_id = ? AND month = ?", profileID, NormalizeMonth(month)).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// GetMyPlans returns all of the owner's plans, newest month first.
func (s *goalPlanService) GetMyPlans(profileID uint, page pagination.PageRequest) (*pagination.PageResponse[models.GoalPlan], error) {
	page.Defaults()

	base := s.db.Model(&models.GoalPlan{}).Where("profile_id = ?", profileID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var plans []models.GoalPlan
	err := s.planQuery().
		Where("profile_id = ?", profileID).
		Order("month DESC").
		Scopes(pagination.Paginate(page)).
		Find(&plans).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(plans, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateDraftItems overwrites the plan's content while it is freely
// editable (draft or rejected). The caller supplies the revision it read;
// a concurrent writer's change fails the update instead of being clobbered.
func (s *goalPlanService) UpdateDraftItems(actorID, planID uint, revision int, items []ItemInput) (*models.GoalPlan, error) {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan.ProfileID != actorID {
		return nil, apperrors.ErrForbidden
	}
	if !workflow.ContentEditable(plan.Status) {
		return nil, apperrors.ErrPlanNotEditable
	}

	replacement := itemsFromInput(items, models.ItemStageCurrent)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.GoalPlan{}).
			Where("id = ? AND revision = ?", plan.ID, revision).
			Update("revision", gorm.Expr("revision + 1"))
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrStaleRevision
		}
		return replaceStage(tx, plan.ID, models.ItemStageCurrent, replacement)
	})
	if err != nil {
		return nil, err
	}

	return s.loadPlan(plan.ID)
}

// DeletePlan removes a plan outright. Only the owner may delete, and only
// while the plan is in draft or rejected status; everything past that is
// an append-only audit record.
func (s *goalPlanService) DeletePlan(actorID, planID uint) error {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return err
	}
	if plan.ProfileID != actorID {
		return apperrors.ErrForbidden
	}
	if !workflow.Deletable(plan.Status) {
		return apperrors.ErrPlanNotDeletable
	}

	// Hard delete: a soft-deleted row would keep occupying the unique
	// (profile_id, month) slot and block re-planning the month.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("goal_plan_id = ?", plan.ID).Delete(&models.GoalItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Unscoped().Delete(plan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Transition applies a workflow action to a plan. The action is resolved
// against the transition table with the actor's capabilities, the carried
// item payload is validated up front, and the status change plus all item
// mutations commit in one database transaction guarded by a revision
// compare-and-swap. On any error the plan is left untouched.
func (s *goalPlanService) Transition(actorID, planID uint, action workflow.Action, input TransitionInput) (*models.GoalPlan, error) {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(actorID, plan)
	if err != nil {
		return nil, err
	}

	tr, err := workflow.Next(plan.Status, action, actor)
	if err != nil {
		return nil, err
	}

	// Validate the item set this transition carries before touching anything.
	var (
		editedItems   []models.GoalItem // reviewer edits applied on first-pass approval
		proposedItems []models.GoalItem // owner's proposed edit to an approved plan
	)
	switch action {
	case workflow.ActionSubmit:
		if err := workflow.ValidateForSubmission(plan.CurrentItems()); err != nil {
			return nil, err
		}
	case workflow.ActionApprove:
		switch plan.Status {
		case models.PlanStatusPendingApproval:
			if len(input.Items) > 0 {
				editedItems = itemsFromInput(input.Items, models.ItemStageCurrent)
				if err := workflow.ValidateForSubmission(editedItems); err != nil {
					return nil, err
				}
			} else if err := workflow.ValidateForSubmission(plan.CurrentItems()); err != nil {
				return nil, err
			}
		case models.PlanStatusPendingEditApproval:
			if err := workflow.ValidateForSubmission(plan.ProposedItems()); err != nil {
				return nil, err
			}
		}
	case workflow.ActionRequestEdit:
		if len(input.Items) == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A content edit requires the proposed item set")
		}
		proposedItems = itemsFromInput(input.Items, models.ItemStageProposed)
		if err := workflow.ValidateForSubmission(proposedItems); err != nil {
			return nil, err
		}
	case workflow.ActionSubmitActuals:
		if len(input.Actuals) == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Submitting actuals requires at least one result")
		}
		known := make(map[string]bool, len(plan.Items))
		for _, item := range plan.CurrentItems() {
			known[item.ItemID] = true
		}
		for _, actual := range input.Actuals {
			if !known[actual.ItemID] {
				return nil, apperrors.ErrUnknownItem
			}
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":   tr.Next,
			"revision": gorm.Expr("revision + 1"),
		}
		switch {
		case action == workflow.ActionSubmit:
			// a fresh submission carries no reviewer feedback
			updates["reviewer_notes"] = nil
		case strings.TrimSpace(input.ReviewerNote) != "":
			updates["reviewer_notes"] = strings.TrimSpace(input.ReviewerNote)
		}

		// compare-and-swap on revision; a concurrent writer loses cleanly
		res := tx.Model(&models.GoalPlan{}).
			Where("id = ? AND revision = ?", plan.ID, input.Revision).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrStaleRevision
		}

		switch action {
		case workflow.ActionApprove:
			switch plan.Status {
			case models.PlanStatusPendingApproval:
				if editedItems != nil {
					if err := replaceStage(tx, plan.ID, models.ItemStageCurrent, editedItems); err != nil {
						return err
					}
				}
			case models.PlanStatusPendingEditApproval:
				// promote the proposed set; the old approved content retires
				if err := tx.Where("goal_plan_id = ? AND stage = ?", plan.ID, models.ItemStageCurrent).
					Delete(&models.GoalItem{}).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				if err := tx.Model(&models.GoalItem{}).
					Where("goal_plan_id = ? AND stage = ?", plan.ID, models.ItemStageProposed).
					Update("stage", models.ItemStageCurrent).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		case workflow.ActionReject:
			if plan.Status == models.PlanStatusPendingEditApproval {
				// drop the proposed edit; the approved items stay authoritative
				if err := tx.Where("goal_plan_id = ? AND stage = ?", plan.ID, models.ItemStageProposed).
					Delete(&models.GoalItem{}).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		case workflow.ActionRequestEdit:
			for i := range proposedItems {
				proposedItems[i].GoalPlanID = plan.ID
			}
			if err := tx.Create(&proposedItems).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		case workflow.ActionSubmitActuals:
			for _, actual := range input.Actuals {
				if err := tx.Model(&models.GoalItem{}).
					Where("goal_plan_id = ? AND item_id = ? AND stage = ?", plan.ID, actual.ItemID, models.ItemStageCurrent).
					Update("actual", actual.Actual).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadPlan(plan.ID)
}

// GetDirectReportsPending returns the manager's review inbox: plans owned
// by the manager's direct reports that are waiting on a manager action.
func (s *goalPlanService) GetDirectReportsPending(managerID uint, page pagination.PageRequest) (*pagination.PageResponse[PlanSummary], error) {
	page.Defaults()

	filter := func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN profiles ON profiles.id = goal_plans.profile_id AND profiles.deleted_at IS NULL").
			Where("profiles.manager_id = ?", managerID).
			Where("goal_plans.status IN ?", reviewPendingStatuses)
	}

	return s.pendingPage(filter, page)
}

// GetHRPending returns the HR inbox: every plan waiting on the HR gate,
// regardless of reporting line. Only HR/admin actors may call it.
func (s *goalPlanService) GetHRPending(actorID uint, page pagination.PageRequest) (*pagination.PageResponse[PlanSummary], error) {
	var actor models.Profile
	if err := s.db.First(&actor, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !actor.Role.IsHR() {
		return nil, apperrors.ErrForbidden
	}

	page.Defaults()

	filter := func(db *gorm.DB) *gorm.DB {
		return db.Where("goal_plans.status = ?", models.PlanStatusPendingHRApproval)
	}

	return s.pendingPage(filter, page)
}

// pendingPage runs a review-inbox query: count, page, and project each plan
// with its owner's display profile, oldest update first.
func (s *goalPlanService) pendingPage(filter func(*gorm.DB) *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[PlanSummary], error) {
	var totalItems int64
	if err := filter(s.db.Model(&models.GoalPlan{})).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var plans []models.GoalPlan
	err := filter(s.db.Model(&models.GoalPlan{})).
		Preload("Profile").
		Preload("Items", orderedItems).
		Order("goal_plans.updated_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&plans).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summaries := make([]PlanSummary, 0, len(plans))
	for _, plan := range plans {
		summaries = append(summaries, summarize(plan))
	}

	result := pagination.NewPageResponse(summaries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// summarize projects a plan into its inbox row. A missing owner profile
// degrades to a placeholder instead of failing the view.
func summarize(plan models.GoalPlan) PlanSummary {
	ownerName := "Unknown employee"
	ownerDepartment := ""
	if plan.Profile != nil {
		ownerName = plan.Profile.DisplayName()
		ownerDepartment = plan.Profile.Department
	}
	return PlanSummary{
		PlanID:          plan.ID,
		ProfileID:       plan.ProfileID,
		OwnerName:       ownerName,
		OwnerDepartment: ownerDepartment,
		Month:           plan.Month,
		Status:          plan.Status,
		StatusLabel:     workflow.StatusLabel(plan.Status),
		TotalWeightage:  workflow.TotalWeightage(plan.CurrentItems()),
		Revision:        plan.Revision,
		UpdatedAt:       plan.UpdatedAt,
	}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (s *goalPlanService) planQuery() *gorm.DB {
	return s.db.Preload("Profile").Preload("Items", orderedItems)
}

func (s *goalPlanService) loadPlan(planID uint) (*models.GoalPlan, error) {
	var plan models.GoalPlan
	if err := s.planQuery().First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// resolveActor builds the capability set of the requesting profile relative
// to one plan. Capabilities are resolved here once; the state machine and
// handlers never re-derive roles.
func (s *goalPlanService) resolveActor(actorID uint, plan *models.GoalPlan) (workflow.Actor, error) {
	var profile models.Profile
	if err := s.db.First(&profile, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workflow.Actor{}, apperrors.ErrProfileNotFound
		}
		return workflow.Actor{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	actor := workflow.Actor{
		ProfileID: actorID,
		OwnsPlan:  plan.ProfileID == actorID,
		IsHR:      profile.Role.IsHR(),
	}
	if plan.Profile != nil && plan.Profile.ManagerID != nil && *plan.Profile.ManagerID == actorID {
		actor.ManagesOwner = true
	}
	return actor, nil
}

// itemsFromInput maps request payload items onto model rows in payload
// order. Item IDs are preserved when supplied so targets keep their
// identity across edits; blank IDs get a fresh UUIDv7 on insert.
func itemsFromInput(inputs []ItemInput, stage models.ItemStage) []models.GoalItem {
	items := make([]models.GoalItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, models.GoalItem{
			ItemID:    in.ItemID,
			Stage:     stage,
			Position:  i,
			Client:    in.Client,
			Bucket:    in.Bucket,
			LineItem:  in.LineItem,
			Weightage: in.Weightage,
			Target:    in.Target,
		})
	}
	return items
}

// replaceStage swaps out every item in the given stage for the replacement
// set, inside the caller's transaction.
func replaceStage(tx *gorm.DB, planID uint, stage models.ItemStage, items []models.GoalItem) error {
	if err := tx.Where("goal_plan_id = ? AND stage = ?", planID, stage).Delete(&models.GoalItem{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].GoalPlanID = planID
	}
	if err := tx.Create(&items).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
