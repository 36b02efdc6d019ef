// Package workflow implements the goal plan approval state machine.
//
// Legal status changes live in a single transition table keyed by
// (status, action). Adding a status or an action is a one-table edit, and
// any combination not in the table is an invalid transition, never a
// silent no-op. The table also records who may trigger each transition and
// whether the submit-time weightage gate applies.
package workflow

import (
	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
)

// Action is a workflow action requested by an actor against a plan.
type Action string

const (
	ActionSubmit        Action = "submit"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionRequestEdit   Action = "request_edit"
	ActionSubmitActuals Action = "submit_actuals"
)

// Actor carries the capability set of the requesting profile relative to
// one specific plan. It is resolved once per request by the service layer
// and passed in whole; the state machine never re-derives roles.
type Actor struct {
	ProfileID    uint
	OwnsPlan     bool
	ManagesOwner bool // direct manager of the plan owner
	IsHR         bool // HR or admin; also acts as a proxy manager
}

// capability names the single capability a transition requires.
type capability int

const (
	byOwner capability = iota
	byManager
	byHR
)

func (a Actor) allowed(c capability) bool {
	switch c {
	case byOwner:
		return a.OwnsPlan
	case byManager:
		return a.ManagesOwner || a.IsHR
	case byHR:
		return a.IsHR
	}
	return false
}

type rule struct {
	next models.PlanStatus
	by   capability
	// submit-type transitions must pass the weightage and required-field
	// checks on the item set they carry
	weightageGate bool
}

// transitions is the authoritative table of legal status changes.
// completed is terminal and deliberately has no entry.
var transitions = map[models.PlanStatus]map[Action]rule{
	models.PlanStatusDraft: {
		ActionSubmit: {next: models.PlanStatusPendingApproval, by: byOwner, weightageGate: true},
	},
	models.PlanStatusRejected: {
		// the owner revises content and resubmits, re-entering the chain
		ActionSubmit: {next: models.PlanStatusPendingApproval, by: byOwner, weightageGate: true},
	},
	models.PlanStatusPendingApproval: {
		ActionApprove: {next: models.PlanStatusPendingHRApproval, by: byManager, weightageGate: true},
		ActionReject:  {next: models.PlanStatusRejected, by: byManager},
	},
	models.PlanStatusPendingHRApproval: {
		ActionApprove: {next: models.PlanStatusApproved, by: byHR},
		ActionReject:  {next: models.PlanStatusRejected, by: byHR},
	},
	models.PlanStatusApproved: {
		ActionRequestEdit:   {next: models.PlanStatusPendingEditApproval, by: byOwner, weightageGate: true},
		ActionSubmitActuals: {next: models.PlanStatusPendingScoreApproval, by: byOwner},
	},
	models.PlanStatusPendingEditApproval: {
		// an approved edit re-enters the HR gate
		ActionApprove: {next: models.PlanStatusPendingHRApproval, by: byManager, weightageGate: true},
		// a rejected edit reverts; the previously approved content stands
		ActionReject: {next: models.PlanStatusApproved, by: byManager},
	},
	models.PlanStatusPendingScoreApproval: {
		ActionApprove: {next: models.PlanStatusCompleted, by: byManager},
		// returned for rescoring; submitted actuals are kept for revision
		ActionReject: {next: models.PlanStatusApproved, by: byManager},
	},
}

// Transition is the outcome of a successful table lookup.
type Transition struct {
	Next models.PlanStatus
	// WeightageGate reports whether the caller must validate the item set
	// (total weightage <= 100, required fields present) before committing.
	WeightageGate bool
}

// Next resolves the requested action against the transition table.
// It returns ErrInvalidTransition when the action is not legal from the
// plan's current status, and ErrForbidden when it is legal but the actor
// lacks the required capability. The caller applies no state change on error.
func Next(status models.PlanStatus, action Action, actor Actor) (Transition, error) {
	rules, ok := transitions[status]
	if !ok {
		return Transition{}, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			"Goal plan in status '"+string(status)+"' accepts no further actions")
	}
	r, ok := rules[action]
	if !ok {
		return Transition{}, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			"Action '"+string(action)+"' is not allowed while the plan is in status '"+string(status)+"'")
	}
	if !actor.allowed(r.by) {
		return Transition{}, apperrors.ErrForbidden
	}
	return Transition{Next: r.next, WeightageGate: r.weightageGate}, nil
}

// ContentEditable reports whether the owner may freely edit or overwrite
// plan content. Outside these states content changes only through reviewer
// actions or the request-edit flow.
func ContentEditable(status models.PlanStatus) bool {
	return status == models.PlanStatusDraft || status == models.PlanStatusRejected
}

// Deletable reports whether the owner may delete the plan outright.
// Every other status is an append-only audit record.
func Deletable(status models.PlanStatus) bool {
	return status == models.PlanStatusDraft || status == models.PlanStatusRejected
}

// Terminal reports whether the status accepts no further transitions.
func Terminal(status models.PlanStatus) bool {
	_, ok := transitions[status]
	return !ok
}
