// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MonthLayout is the wire format for a plan month.
const MonthLayout = "2006-01"

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("plan_month", validatePlanMonth)
		_ = v.RegisterValidation("profile_role", validateProfileRole)
	}
}

// ParseMonth parses a YYYY-MM month string into the first of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	return time.Parse(MonthLayout, s)
}

func validatePlanMonth(fl validator.FieldLevel) bool {
	_, err := ParseMonth(fl.Field().String())
	return err == nil
}

func validateProfileRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "employee", "manager", "hr", "admin":
		return true
	}
	return false
}
