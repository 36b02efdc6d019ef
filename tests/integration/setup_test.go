package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"peopleops/internal/handlers"
	"peopleops/internal/logger"
	"peopleops/internal/middleware"
	"peopleops/internal/models"
	"peopleops/internal/services"
	"peopleops/internal/validator"
)

const syncAPIKey = "integration-sync-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Profile{},
		&models.GoalPlan{},
		&models.GoalItem{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	profileService := services.NewProfileService(db)
	goalPlanService := services.NewGoalPlanService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(profileService)
	goalPlanHandler := handlers.NewGoalPlanHandler(goalPlanService, auditService)
	reviewHandler := handlers.NewReviewHandler(goalPlanService)
	syncHandler := handlers.NewSyncHandler(profileService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Directory sync routes
	internal := v1.Group("/internal")
	internal.Use(middleware.SyncAuthMiddleware(syncAPIKey))
	internal.POST("/directory/sync", syncHandler.SyncDirectory)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	plans := protected.Group("/goal-plans")
	plans.POST("", goalPlanHandler.CreatePlan)
	plans.GET("", goalPlanHandler.GetMyPlans)
	plans.GET("/month/:month", goalPlanHandler.GetPlanForMonth)
	plans.GET("/:id", goalPlanHandler.GetPlan)
	plans.PUT("/:id", goalPlanHandler.UpdatePlan)
	plans.DELETE("/:id", goalPlanHandler.DeletePlan)
	plans.POST("/:id/submit", goalPlanHandler.SubmitPlan)
	plans.POST("/:id/approve", goalPlanHandler.ApprovePlan)
	plans.POST("/:id/reject", goalPlanHandler.RejectPlan)
	plans.POST("/:id/request-edit", goalPlanHandler.RequestEdit)
	plans.POST("/:id/actuals", goalPlanHandler.SubmitActuals)

	reviews := protected.Group("/reviews")
	reviews.GET("/direct-reports", reviewHandler.GetDirectReports)
	reviews.GET("/hr", reviewHandler.GetHRQueue)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// syncRequest pushes a directory batch with the sync API key.
func (app *testApp) syncRequest(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/internal/directory/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", syncAPIKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerProfile registers a new employee and returns the access token,
// refresh token, and profile ID.
func (app *testApp) registerProfile(t *testing.T, email, password string) (accessToken, refreshToken string, profileID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"Employee"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	profile := result["profile"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), profile["id"].(float64)
}

// loginProfile logs in and returns the access and refresh tokens.
func (app *testApp) loginProfile(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// promoteProfile assigns a role (and optionally a manager) through the
// directory sync channel, then returns a fresh access token.
func (app *testApp) promoteProfile(t *testing.T, email, password, role, managerEmail string) string {
	t.Helper()
	entry := fmt.Sprintf(`{"email":%q,"role":%q,"first_name":"Test","last_name":"Employee"`, email, role)
	if managerEmail != "" {
		entry += fmt.Sprintf(`,"manager_email":%q`, managerEmail)
	}
	entry += "}"

	rec := app.syncRequest(fmt.Sprintf(`{"entries":[%s]}`, entry))
	if rec.Code != http.StatusOK {
		t.Fatalf("directory sync failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["synced"].(float64) != 1 {
		t.Fatalf("directory sync rejected the entry: %s", rec.Body.String())
	}

	access, _ := app.loginProfile(t, email, password)
	return access
}

// createDraftPlan creates a plan with a valid 100% item set and returns its
// ID and revision.
func (app *testApp) createDraftPlan(t *testing.T, token, month string) (planID, revision float64) {
	t.Helper()
	body := fmt.Sprintf(`{"month":%q,"items":[
		{"client":"Acme","bucket":"Delivery","line_item":"Ship the release","weightage":60,"target":"Released by month end"},
		{"client":"Globex","bucket":"Support","line_item":"Reduce ticket backlog","weightage":40,"target":"Under 20 open tickets"}
	]}`, month)
	rec := app.request("POST", "/api/v1/goal-plans", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("plan creation failed: %d %s", rec.Code, rec.Body.String())
	}
	plan := parseJSON(t, rec)["plan"].(map[string]interface{})
	return plan["id"].(float64), plan["revision"].(float64)
}

// planAction posts a workflow action and returns the response plan on 200.
func (app *testApp) planAction(t *testing.T, token string, planID float64, action, body string) map[string]interface{} {
	t.Helper()
	path := fmt.Sprintf("/api/v1/goal-plans/%.0f/%s", planID, action)
	rec := app.request("POST", path, body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s failed: %d %s", action, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["plan"].(map[string]interface{})
}
