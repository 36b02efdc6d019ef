package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/pagination"
	"peopleops/internal/services"
)

// ReviewHandler serves the manager and HR review inboxes.
type ReviewHandler struct {
	planService services.GoalPlanServicer
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(planService services.GoalPlanServicer) *ReviewHandler {
	return &ReviewHandler{planService: planService}
}

// GetDirectReports lists plans from the caller's direct reports that are
// waiting on a manager action.
// @Summary     Direct reports review queue
// @Description List plans from direct reports pending a manager action
// @Tags        reviews
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.PlanSummary] "Paginated review queue"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reviews/direct-reports [get]
func (h *ReviewHandler) GetDirectReports(c *gin.Context) {
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

	result, err := h.planService.GetDirectReportsPending(profileID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHRQueue lists plans across the organization waiting on an HR action.
// @Summary     HR review queue
// @Description List plans pending HR sign-off (HR role required)
// @Tags        reviews
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.PlanSummary] "Paginated HR queue"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "HR role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reviews/hr [get]
func (h *ReviewHandler) GetHRQueue(c *gin.Context) {
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

	result, err := h.planService.GetHRPending(profileID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
