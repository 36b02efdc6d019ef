package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// seedTeam registers an employee, a manager, and an HR profile and wires the
// reporting line through the directory sync. Returns access tokens.
func seedTeam(t *testing.T, app *testApp) (employee, manager, hr string) {
	t.Helper()

	app.registerProfile(t, "manager@test.com", "password123")
	app.registerProfile(t, "employee@test.com", "password123")
	app.registerProfile(t, "hr@test.com", "password123")

	manager = app.promoteProfile(t, "manager@test.com", "password123", "manager", "")
	employee = app.promoteProfile(t, "employee@test.com", "password123", "employee", "manager@test.com")
	hr = app.promoteProfile(t, "hr@test.com", "password123", "hr", "")
	return employee, manager, hr
}

func TestGoalPlanFlow_FullLifecycle(t *testing.T) {
	app := setupApp(t)
	employee, manager, hr := seedTeam(t, app)

	// Employee drafts a plan for the month
	planID, revision := app.createDraftPlan(t, employee, "2026-09")

	// The month is idempotent: creating again returns the same plan with 200
	rec := app.request("POST", "/api/v1/goal-plans", `{"month":"2026-09"}`, employee)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an existing month, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["plan"].(map[string]interface{})["id"].(float64) != planID {
		t.Fatal("expected the existing plan back")
	}

	// Submit for manager approval
	plan := app.planAction(t, employee, planID, "submit", fmt.Sprintf(`{"revision":%.0f}`, revision))
	if plan["status"] != "pending_approval" {
		t.Fatalf("expected pending_approval, got %v", plan["status"])
	}

	// Manager approves, forwarding to HR
	plan = app.planAction(t, manager, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	if plan["status"] != "pending_hr_approval" {
		t.Fatalf("expected pending_hr_approval, got %v", plan["status"])
	}

	// HR signs off
	plan = app.planAction(t, hr, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	if plan["status"] != "approved" {
		t.Fatalf("expected approved, got %v", plan["status"])
	}

	// Employee records actuals against the approved items
	items := plan["items"].([]interface{})
	actuals := ""
	for i, raw := range items {
		item := raw.(map[string]interface{})
		if i > 0 {
			actuals += ","
		}
		actuals += fmt.Sprintf(`{"item_id":%q,"actual":"Delivered in full"}`, item["item_id"])
	}
	plan = app.planAction(t, employee, planID, "actuals",
		fmt.Sprintf(`{"revision":%.0f,"actuals":[%s]}`, plan["revision"].(float64), actuals))
	if plan["status"] != "pending_score_approval" {
		t.Fatalf("expected pending_score_approval, got %v", plan["status"])
	}

	// Manager signs off the scoring
	plan = app.planAction(t, manager, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	if plan["status"] != "completed" {
		t.Fatalf("expected completed, got %v", plan["status"])
	}

	// Completed plans accept no further actions
	rec = app.request("POST", fmt.Sprintf("/api/v1/goal-plans/%.0f/submit", planID),
		fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)), employee)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on a completed plan, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGoalPlanFlow_RejectReviseResubmit(t *testing.T) {
	app := setupApp(t)
	employee, manager, _ := seedTeam(t, app)

	planID, revision := app.createDraftPlan(t, employee, "2026-09")

	plan := app.planAction(t, employee, planID, "submit", fmt.Sprintf(`{"revision":%.0f}`, revision))

	// Manager sends it back with feedback
	plan = app.planAction(t, manager, planID, "reject",
		fmt.Sprintf(`{"revision":%.0f,"note":"Rebalance the weightage"}`, plan["revision"].(float64)))
	if plan["status"] != "rejected" {
		t.Fatalf("expected rejected, got %v", plan["status"])
	}
	if plan["reviewer_notes"] != "Rebalance the weightage" {
		t.Errorf("expected the reviewer note stored, got %v", plan["reviewer_notes"])
	}

	// Rejected plans stay editable
	rec := app.request("PUT", fmt.Sprintf("/api/v1/goal-plans/%.0f", planID),
		fmt.Sprintf(`{"revision":%.0f,"items":[{"client":"Acme","bucket":"Delivery","line_item":"Revised goal","weightage":100,"target":"Done"}]}`,
			plan["revision"].(float64)), employee)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected rejected plan to be editable: %d %s", rec.Code, rec.Body.String())
	}
	plan = parseJSON(t, rec)["plan"].(map[string]interface{})

	// Resubmission clears the old feedback
	plan = app.planAction(t, employee, planID, "submit", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	if plan["status"] != "pending_approval" {
		t.Fatalf("expected pending_approval after resubmit, got %v", plan["status"])
	}
	if _, present := plan["reviewer_notes"]; present {
		t.Errorf("expected reviewer notes cleared on resubmit, got %v", plan["reviewer_notes"])
	}
}

func TestGoalPlanFlow_WeightageGate(t *testing.T) {
	app := setupApp(t)
	employee, _, _ := seedTeam(t, app)

	// Draft with 115% total weightage; drafting is allowed, submitting is not
	rec := app.request("POST", "/api/v1/goal-plans", `{"month":"2026-09","items":[
		{"client":"Acme","bucket":"Delivery","line_item":"Goal A","weightage":70,"target":"Done"},
		{"client":"Acme","bucket":"Quality","line_item":"Goal B","weightage":45,"target":"Done"}
	]}`, employee)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected drafting over the limit to be allowed, got %d: %s", rec.Code, rec.Body.String())
	}
	plan := parseJSON(t, rec)["plan"].(map[string]interface{})
	if plan["over_limit"] != true {
		t.Error("expected the response to flag the over-limit total")
	}
	planID := plan["id"].(float64)

	rec = app.request("POST", fmt.Sprintf("/api/v1/goal-plans/%.0f/submit", planID), `{"revision":1}`, employee)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on submission, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "WEIGHTAGE_OVER_LIMIT" {
		t.Errorf("expected WEIGHTAGE_OVER_LIMIT, got %v", errObj["code"])
	}
}

func TestGoalPlanFlow_EditApprovedPlan(t *testing.T) {
	app := setupApp(t)
	employee, manager, hr := seedTeam(t, app)

	planID, revision := app.createDraftPlan(t, employee, "2026-09")
	plan := app.planAction(t, employee, planID, "submit", fmt.Sprintf(`{"revision":%.0f}`, revision))
	plan = app.planAction(t, manager, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	plan = app.planAction(t, hr, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))

	// Owner proposes a content edit; approved items stay authoritative
	plan = app.planAction(t, employee, planID, "request-edit",
		fmt.Sprintf(`{"revision":%.0f,"items":[{"client":"Initech","bucket":"Platform","line_item":"New direction","weightage":100,"target":"Migrated"}]}`,
			plan["revision"].(float64)))
	if plan["status"] != "pending_edit_approval" {
		t.Fatalf("expected pending_edit_approval, got %v", plan["status"])
	}
	if len(plan["items"].([]interface{})) != 2 {
		t.Error("expected the approved content untouched while the edit is pending")
	}
	if len(plan["proposed_items"].([]interface{})) != 1 {
		t.Error("expected the proposed item set alongside")
	}

	// Manager approves the edit; it promotes and re-enters the HR gate
	plan = app.planAction(t, manager, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	if plan["status"] != "pending_hr_approval" {
		t.Fatalf("expected pending_hr_approval after the edit approval, got %v", plan["status"])
	}
	items := plan["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["client"] != "Initech" {
		t.Errorf("expected the proposed set promoted, got %v", items)
	}

	plan = app.planAction(t, hr, planID, "approve", fmt.Sprintf(`{"revision":%.0f}`, plan["revision"].(float64)))
	if plan["status"] != "approved" {
		t.Fatalf("expected approved, got %v", plan["status"])
	}
}

func TestGoalPlanFlow_AccessControl(t *testing.T) {
	app := setupApp(t)
	employee, manager, _ := seedTeam(t, app)
	outsiderToken, _, _ := app.registerProfile(t, "outsider@test.com", "password123")

	planID, revision := app.createDraftPlan(t, employee, "2026-09")

	// An unrelated employee cannot read the plan
	rec := app.request("GET", fmt.Sprintf("/api/v1/goal-plans/%.0f", planID), "", outsiderToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an outsider, got %d", rec.Code)
	}

	// The manager can read it
	rec = app.request("GET", fmt.Sprintf("/api/v1/goal-plans/%.0f", planID), "", manager)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the manager, got %d: %s", rec.Code, rec.Body.String())
	}

	// The owner cannot approve their own submission
	app.planAction(t, employee, planID, "submit", fmt.Sprintf(`{"revision":%.0f}`, revision))
	rec = app.request("POST", fmt.Sprintf("/api/v1/goal-plans/%.0f/approve", planID), `{"revision":2}`, employee)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for self-approval, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGoalPlanFlow_StaleRevision(t *testing.T) {
	app := setupApp(t)
	employee, _, _ := seedTeam(t, app)

	planID, revision := app.createDraftPlan(t, employee, "2026-09")

	// First edit succeeds and bumps the revision
	rec := app.request("PUT", fmt.Sprintf("/api/v1/goal-plans/%.0f", planID),
		fmt.Sprintf(`{"revision":%.0f,"items":[{"client":"Acme","bucket":"Delivery","line_item":"A","weightage":50,"target":"Done"}]}`, revision),
		employee)
	if rec.Code != http.StatusOK {
		t.Fatalf("first edit failed: %d %s", rec.Code, rec.Body.String())
	}

	// A second writer still holding the old revision loses
	rec = app.request("PUT", fmt.Sprintf("/api/v1/goal-plans/%.0f", planID),
		fmt.Sprintf(`{"revision":%.0f,"items":[{"client":"Globex","bucket":"Support","line_item":"B","weightage":50,"target":"Done"}]}`, revision),
		employee)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for the stale writer, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "STALE_REVISION" {
		t.Errorf("expected STALE_REVISION, got %v", errObj["code"])
	}
}

func TestGoalPlanFlow_DeleteDraft(t *testing.T) {
	app := setupApp(t)
	employee, _, _ := seedTeam(t, app)

	planID, _ := app.createDraftPlan(t, employee, "2026-09")

	rec := app.request("DELETE", fmt.Sprintf("/api/v1/goal-plans/%.0f", planID), "", employee)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	// The month is free again
	rec = app.request("POST", "/api/v1/goal-plans", `{"month":"2026-09"}`, employee)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected the month to be free after deletion, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGoalPlanFlow_MonthLookup(t *testing.T) {
	app := setupApp(t)
	employee, _, _ := seedTeam(t, app)

	planID, _ := app.createDraftPlan(t, employee, "2026-09")

	rec := app.request("GET", "/api/v1/goal-plans/month/2026-09", "", employee)
	if rec.Code != http.StatusOK {
		t.Fatalf("month lookup failed: %d %s", rec.Code, rec.Body.String())
	}
	plan := parseJSON(t, rec)["plan"].(map[string]interface{})
	if plan["id"].(float64) != planID {
		t.Errorf("expected plan %.0f, got %v", planID, plan["id"])
	}

	rec = app.request("GET", "/api/v1/goal-plans/month/2026-10", "", employee)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an empty month, got %d", rec.Code)
	}
}
