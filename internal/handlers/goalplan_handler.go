package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
	"peopleops/internal/pagination"
	"peopleops/internal/services"
	"peopleops/internal/validator"
	"peopleops/internal/workflow"
)

// GoalPlanHandler handles goal plan workflow requests.
type GoalPlanHandler struct {
	planService  services.GoalPlanServicer
	auditService services.AuditServicer
}

// NewGoalPlanHandler creates a new GoalPlanHandler.
func NewGoalPlanHandler(planService services.GoalPlanServicer, auditService services.AuditServicer) *GoalPlanHandler {
	return &GoalPlanHandler{planService: planService, auditService: auditService}
}

// GoalItemRequest is one goal item row in a request payload.
type GoalItemRequest struct {
	ItemID    string `json:"item_id" binding:"omitempty,uuid"`
	Client    string `json:"client" binding:"max=200"`
	Bucket    string `json:"bucket" binding:"max=200"`
	LineItem  string `json:"line_item" binding:"max=2000"`
	Weightage int    `json:"weightage" binding:"min=0,max=100"`
	Target    string `json:"target" binding:"max=2000"`
}

// ActualRequest records the actual result for one item.
type ActualRequest struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
	Actual string `json:"actual" binding:"required,max=2000"`
}

// CreatePlanRequest represents the payload for creating a monthly plan.
type CreatePlanRequest struct {
	Month string            `json:"month" binding:"required,plan_month"`
	Items []GoalItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdatePlanRequest represents a content edit to a draft or rejected plan.
type UpdatePlanRequest struct {
	Revision int               `json:"revision" binding:"required,min=1"`
	Items    []GoalItemRequest `json:"items" binding:"required,dive"`
}

// TransitionRequest represents a plain workflow action (submit, reject,
// HR approval) with an optional reviewer note.
type TransitionRequest struct {
	Revision int    `json:"revision" binding:"required,min=1"`
	Note     string `json:"note" binding:"max=2000"`
}

// ApproveRequest represents a manager/HR approval, optionally carrying the
// reviewer's item edits on first-pass approval.
type ApproveRequest struct {
	Revision int               `json:"revision" binding:"required,min=1"`
	Note     string            `json:"note" binding:"max=2000"`
	Items    []GoalItemRequest `json:"items" binding:"omitempty,dive"`
}

// RequestEditRequest represents the owner's proposed edit to an approved plan.
type RequestEditRequest struct {
	Revision int               `json:"revision" binding:"required,min=1"`
	Items    []GoalItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SubmitActualsRequest represents the owner's scoring submission.
type SubmitActualsRequest struct {
	Revision int             `json:"revision" binding:"required,min=1"`
	Actuals  []ActualRequest `json:"actuals" binding:"required,min=1,dive"`
}

// PlanResponse is the presentation projection of a plan.
type PlanResponse struct {
	ID                uint              `json:"id"`
	ProfileID         uint              `json:"profile_id"`
	Month             time.Time         `json:"month"`
	Status            models.PlanStatus `json:"status"`
	StatusLabel       string            `json:"status_label"`
	StatusDescription string            `json:"status_description"`
	Editable          bool              `json:"editable"`
	Revision          int               `json:"revision"`
	ReviewerNotes     *string           `json:"reviewer_notes,omitempty"`
	TotalWeightage    int               `json:"total_weightage"`
	OverLimit         bool              `json:"over_limit"`
	Items             []models.GoalItem `json:"items"`
	ProposedItems     []models.GoalItem `json:"proposed_items,omitempty"`
}

func newPlanResponse(plan *models.GoalPlan, actorID uint) PlanResponse {
	current := plan.CurrentItems()
	return PlanResponse{
		ID:                plan.ID,
		ProfileID:         plan.ProfileID,
		Month:             plan.Month,
		Status:            plan.Status,
		StatusLabel:       workflow.StatusLabel(plan.Status),
		StatusDescription: workflow.StatusDescription(plan.Status),
		Editable:          plan.ProfileID == actorID && workflow.ContentEditable(plan.Status),
		Revision:          plan.Revision,
		ReviewerNotes:     plan.ReviewerNotes,
		TotalWeightage:    workflow.TotalWeightage(current),
		OverLimit:         workflow.IsOverLimit(current),
		Items:             current,
		ProposedItems:     plan.ProposedItems(),
	}
}

func itemInputs(items []GoalItemRequest) []services.ItemInput {
	inputs := make([]services.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, services.ItemInput{
			ItemID:    item.ItemID,
			Client:    item.Client,
			Bucket:    item.Bucket,
			LineItem:  item.LineItem,
			Weightage: item.Weightage,
			Target:    item.Target,
		})
	}
	return inputs
}

func actualInputs(actuals []ActualRequest) []services.ActualInput {
	inputs := make([]services.ActualInput, 0, len(actuals))
	for _, actual := range actuals {
		inputs = append(inputs, services.ActualInput{ItemID: actual.ItemID, Actual: actual.Actual})
	}
	return inputs
}

// CreatePlan handles creating a draft plan for a month. Creation is
// idempotent: posting for a month that already has a plan returns the
// existing plan with 200 instead of 201.
// @Summary     Create a goal plan
// @Description Create a draft goal plan for a month (idempotent per month)
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePlanRequest true "Plan month and initial items"
// @Success     200 {object} PlanResponse "Existing plan for the month"
// @Success     201 {object} PlanResponse "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goal-plans [post]
func (h *GoalPlanHandler) CreatePlan(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	month, err := validator.ParseMonth(req.Month)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be formatted as YYYY-MM"))
		return
	}

	plan, created, err := h.planService.CreatePlan(profileID, month, itemInputs(req.Items))
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.auditService.Log(profileID, "CREATE_PLAN", "goal_plan", plan.ID, "", plan.Status, c.ClientIP(),
			map[string]interface{}{"month": req.Month, "items": len(req.Items)})
	}

	c.JSON(status, gin.H{"plan": newPlanResponse(plan, profileID)})
}

// GetMyPlans lists the authenticated employee's plans, newest month first.
// @Summary     List my goal plans
// @Description Get a paginated list of the authenticated employee's plans
// @Tags        goal-plans
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.GoalPlan] "Paginated plans"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goal-plans [get]
func (h *GoalPlanHandler) GetMyPlans(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.planService.GetMyPlans(profileID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	responses := make([]PlanResponse, 0, len(result.Data))
	for i := range result.Data {
		responses = append(responses, newPlanResponse(&result.Data[i], profileID))
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(responses, result.Page, result.PageSize, result.TotalItems))
}

// GetPlanForMonth returns the authenticated employee's plan for one month.
// @Summary     Get plan for month
// @Description Get the authenticated employee's plan for a month (YYYY-MM)
// @Tags        goal-plans
// @Produce     json
// @Security    BearerAuth
// @Param       month path string true "Month (YYYY-MM)"
// @Success     200 {object} PlanResponse "Plan"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No plan for this month"
// @Router      /goal-plans/month/{month} [get]
func (h *GoalPlanHandler) GetPlanForMonth(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := validator.ParseMonth(c.Param("month"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be formatted as YYYY-MM"))
		return
	}

	plan, err := h.planService.GetPlanForMonth(profileID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": newPlanResponse(plan, profileID)})
}

// GetPlan returns one plan by ID, visible to its owner, the owner's
// manager, and HR.
// @Summary     Get goal plan by ID
// @Description Get a specific goal plan
// @Tags        goal-plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Plan ID"
// @Success     200 {object} PlanResponse "Plan"
// @Failure     400 {object} ErrorResponse "Invalid plan ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not visible to this profile"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /goal-plans/{id} [get]
func (h *GoalPlanHandler) GetPlan(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.GetPlanByID(profileID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": newPlanResponse(plan, profileID)})
}

// UpdatePlan overwrites plan content while it is in draft or rejected status.
// @Summary     Edit plan content
// @Description Replace the item set of a draft or rejected plan
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Plan ID"
// @Param       request body UpdatePlanRequest true "Revision and replacement items"
// @Success     200 {object} PlanResponse "Updated plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the plan owner"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Plan not editable or stale revision"
// @Router      /goal-plans/{id} [put]
func (h *GoalPlanHandler) UpdatePlan(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.planService.UpdateDraftItems(profileID, planID, req.Revision, itemInputs(req.Items))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(profileID, "UPDATE_PLAN", "goal_plan", planID, plan.Status, plan.Status, c.ClientIP(),
		map[string]interface{}{"items": len(req.Items)})

	c.JSON(http.StatusOK, gin.H{"plan": newPlanResponse(plan, profileID)})
}

// DeletePlan deletes a draft or rejected plan.
// @Summary     Delete goal plan
// @Description Delete a plan while it is in draft or rejected status
// @Tags        goal-plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Plan ID"
// @Success     200 {object} MessageResponse "Plan deleted"
// @Failure     400 {object} ErrorResponse "Invalid plan ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the plan owner"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Plan not deletable in its current status"
// @Router      /goal-plans/{id} [delete]
func (h *GoalPlanHandler) DeletePlan(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.planService.DeletePlan(profileID, planID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(profileID, "DELETE_PLAN", "goal_plan", planID, "", "", c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Goal plan deleted successfully"})
}

// SubmitPlan submits a draft or rejected plan for manager approval.
// @Summary     Submit goal plan
// @Description Submit a draft or rejected plan for manager approval
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Plan ID"
// @Param       request body TransitionRequest true "Revision"
// @Success     200 {object} PlanResponse "Plan now pending approval"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the plan owner"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Invalid transition or stale revision"
// @Failure     422 {object} ErrorResponse "Weightage over limit or item fields missing"
// @Router      /goal-plans/{id}/submit [post]
func (h *GoalPlanHandler) SubmitPlan(c *gin.Context) {
	h.transition(c, workflow.ActionSubmit, "SUBMIT_PLAN")
}

// ApprovePlan advances a pending plan: manager first pass (optionally with
// item edits), HR sign-off, edit re-approval, or scoring sign-off depending
// on the plan's current status.
// @Summary     Approve goal plan
// @Description Approve the pending review step for the plan's current status
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Plan ID"
// @Param       request body ApproveRequest true "Revision, optional note and item edits"
// @Success     200 {object} PlanResponse "Plan advanced"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Actor lacks the required role"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Invalid transition or stale revision"
// @Failure     422 {object} ErrorResponse "Weightage over limit after edits"
// @Router      /goal-plans/{id}/approve [post]
func (h *GoalPlanHandler) ApprovePlan(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.TransitionInput{
		Revision:     req.Revision,
		ReviewerNote: req.Note,
		Items:        itemInputs(req.Items),
	}
	h.applyTransition(c, profileID, planID, workflow.ActionApprove, "APPROVE_PLAN", input)
}

// RejectPlan rejects or returns the pending review step for the plan's
// current status.
// @Summary     Reject goal plan
// @Description Reject or return the pending review step with a reviewer note
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Plan ID"
// @Param       request body TransitionRequest true "Revision and rejection reason"
// @Success     200 {object} PlanResponse "Plan rejected or returned"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Actor lacks the required role"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Invalid transition or stale revision"
// @Router      /goal-plans/{id}/reject [post]
func (h *GoalPlanHandler) RejectPlan(c *gin.Context) {
	h.transition(c, workflow.ActionReject, "REJECT_PLAN")
}

// RequestEdit proposes a content edit to an approved plan. The approved
// items stay authoritative until a manager re-approves.
// @Summary     Request edit of approved plan
// @Description Propose a content edit to an approved plan for re-approval
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Plan ID"
// @Param       request body RequestEditRequest true "Revision and proposed items"
// @Success     200 {object} PlanResponse "Edit pending manager re-approval"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the plan owner"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Invalid transition or stale revision"
// @Failure     422 {object} ErrorResponse "Weightage over limit or item fields missing"
// @Router      /goal-plans/{id}/request-edit [post]
func (h *GoalPlanHandler) RequestEdit(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RequestEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.TransitionInput{
		Revision: req.Revision,
		Items:    itemInputs(req.Items),
	}
	h.applyTransition(c, profileID, planID, workflow.ActionRequestEdit, "REQUEST_EDIT", input)
}

// SubmitActuals records actual results against the approved items and
// submits the plan for scoring sign-off.
// @Summary     Submit actuals
// @Description Record actual results against an approved plan for scoring
// @Tags        goal-plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Plan ID"
// @Param       request body SubmitActualsRequest true "Revision and actuals"
// @Success     200 {object} PlanResponse "Plan pending scoring approval"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the plan owner"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Invalid transition or stale revision"
// @Failure     422 {object} ErrorResponse "Actuals reference unknown items"
// @Router      /goal-plans/{id}/actuals [post]
func (h *GoalPlanHandler) SubmitActuals(c *gin.Context) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubmitActualsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.TransitionInput{
		Revision: req.Revision,
		Actuals:  actualInputs(req.Actuals),
	}
	h.applyTransition(c, profileID, planID, workflow.ActionSubmitActuals, "SUBMIT_ACTUALS", input)
}

// transition handles the simple actions that carry only a revision and an
// optional reviewer note.
func (h *GoalPlanHandler) transition(c *gin.Context, action workflow.Action, auditAction string) {
	profileID, err := getProfileID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.TransitionInput{Revision: req.Revision, ReviewerNote: req.Note}
	h.applyTransition(c, profileID, planID, action, auditAction, input)
}

func (h *GoalPlanHandler) applyTransition(c *gin.Context, profileID, planID uint, action workflow.Action, auditAction string, input services.TransitionInput) {
	plan, err := h.planService.Transition(profileID, planID, action, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(profileID, auditAction, "goal_plan", planID, "", plan.Status, c.ClientIP(),
		map[string]interface{}{"revision": input.Revision})

	c.JSON(http.StatusOK, gin.H{"plan": newPlanResponse(plan, profileID)})
}
