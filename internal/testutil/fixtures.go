package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"peopleops/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Month returns the canonical first-of-month date used by plan fixtures.
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// CreateTestProfile creates an employee profile with a hashed password and
// unique email.
func CreateTestProfile(t *testing.T, db *gorm.DB) *models.Profile {
	t.Helper()
	return CreateTestProfileWithRole(t, db, models.RoleEmployee)
}

// CreateTestProfileWithRole creates a profile with the given role.
func CreateTestProfileWithRole(t *testing.T, db *gorm.DB, role models.Role) *models.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	profile := &models.Profile{
		Email:      fmt.Sprintf("profile%d@test.com", n),
		Password:   string(hash),
		FirstName:  "Test",
		LastName:   fmt.Sprintf("Profile%d", n),
		Department: "Engineering",
		Role:       role,
		IsActive:   true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestEmployeeWithManager creates an employee profile reporting to the
// given manager.
func CreateTestEmployeeWithManager(t *testing.T, db *gorm.DB, managerID uint) *models.Profile {
	t.Helper()

	employee := CreateTestProfile(t, db)
	if err := db.Model(employee).Update("manager_id", managerID).Error; err != nil {
		t.Fatalf("failed to link test employee to manager: %v", err)
	}
	employee.ManagerID = &managerID
	return employee
}

// CreateTestPlan creates a goal plan in the given status with two items
// totaling 100% weightage.
func CreateTestPlan(t *testing.T, db *gorm.DB, profileID uint, month time.Time, status models.PlanStatus) *models.GoalPlan {
	t.Helper()
	return CreateTestPlanWithItems(t, db, profileID, month, status, TestItems(60, 40))
}

// CreateTestPlanWithItems creates a goal plan with the given item set.
func CreateTestPlanWithItems(t *testing.T, db *gorm.DB, profileID uint, month time.Time, status models.PlanStatus, items []models.GoalItem) *models.GoalPlan {
	t.Helper()

	plan := &models.GoalPlan{
		ProfileID: profileID,
		Month:     month,
		Status:    status,
		Revision:  1,
		Items:     items,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	return plan
}

// TestItems builds filled-in current-stage goal items with the given weightages.
func TestItems(weights ...int) []models.GoalItem {
	items := make([]models.GoalItem, 0, len(weights))
	for i, w := range weights {
		items = append(items, models.GoalItem{
			Stage:     models.ItemStageCurrent,
			Position:  i,
			Client:    fmt.Sprintf("Client %d", i+1),
			Bucket:    "Delivery",
			LineItem:  fmt.Sprintf("Goal line %d", i+1),
			Weightage: w,
			Target:    "Hit the milestone",
		})
	}
	return items
}
