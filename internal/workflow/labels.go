package workflow

import "peopleops/internal/models"

// statusLabels maps each status to the short label and longer description
// shown in plan lists and review inboxes.
var statusLabels = map[models.PlanStatus][2]string{
	models.PlanStatusDraft:                {"Draft", "Being drafted by the employee, not yet submitted"},
	models.PlanStatusPendingApproval:      {"Pending manager approval", "Submitted and waiting for the manager's first-pass review"},
	models.PlanStatusPendingHRApproval:    {"Pending HR approval", "Manager approved, waiting for HR sign-off"},
	models.PlanStatusApproved:             {"Approved", "Fully approved, actuals can be submitted"},
	models.PlanStatusRejected:             {"Rejected", "Sent back for revision, can be edited and resubmitted"},
	models.PlanStatusPendingEditApproval:  {"Edit pending approval", "A content edit to an approved plan is waiting for manager re-approval"},
	models.PlanStatusPendingScoreApproval: {"Scoring pending approval", "Actuals submitted, waiting for the manager's sign-off"},
	models.PlanStatusCompleted:            {"Completed", "Scored and signed off, closed historical record"},
}

// StatusLabel returns the human-readable label for a status.
func StatusLabel(status models.PlanStatus) string {
	if l, ok := statusLabels[status]; ok {
		return l[0]
	}
	return string(status)
}

// StatusDescription returns the longer description for a status.
func StatusDescription(status models.PlanStatus) string {
	if l, ok := statusLabels[status]; ok {
		return l[1]
	}
	return string(status)
}
