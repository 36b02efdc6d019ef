package testutil

import (
	"errors"
	"testing"

	apperrors "peopleops/internal/errors"
	"peopleops/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertStatus fails the test if the plan's status differs from want.
func AssertStatus(t *testing.T, plan *models.GoalPlan, want models.PlanStatus) {
	t.Helper()

	if plan == nil {
		t.Fatalf("expected plan in status %s, got nil plan", want)
	}
	if plan.Status != want {
		t.Errorf("expected plan status %s, got %s", want, plan.Status)
	}
}
