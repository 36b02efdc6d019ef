package workflow

import (
	"strings"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
)

// MaxTotalWeightage is the cap on the summed weightage of a submittable plan.
const MaxTotalWeightage = 100

// TotalWeightage sums the weightage of all items. Negative values are
// treated as 0, matching how blank weightage fields arrive from the editor.
func TotalWeightage(items []models.GoalItem) int {
	total := 0
	for _, item := range items {
		if item.Weightage > 0 {
			total += item.Weightage
		}
	}
	return total
}

// IsOverLimit reports whether the items' total weightage exceeds 100.
// Draft content may transiently exceed the cap to allow free editing;
// this check blocks only submit-type transitions.
func IsOverLimit(items []models.GoalItem) bool {
	return TotalWeightage(items) > MaxTotalWeightage
}

// ValidateForSubmission is the precondition gate for every submit-type
// transition: at least one item, total weightage not exceeding 100, and
// every item's free-text fields filled in. Actuals are not required here;
// they are only populated during scoring.
func ValidateForSubmission(items []models.GoalItem) error {
	if len(items) == 0 {
		return apperrors.ErrPlanEmpty
	}
	for _, item := range items {
		if isBlank(item.Client) || isBlank(item.Bucket) || isBlank(item.LineItem) || isBlank(item.Target) {
			return apperrors.ErrItemFieldRequired
		}
	}
	if IsOverLimit(items) {
		return apperrors.WithMessage(apperrors.ErrWeightageOverLimit,
			"Total weightage is over the 100% limit, reduce item weightages before submitting")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
