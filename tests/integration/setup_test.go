package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Antonio-217/controle-financeiro/internal/handlers"
	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/middleware"
	"github.com/Antonio-217/controle-financeiro/internal/realtime"
	"github.com/Antonio-217/controle-financeiro/internal/services"
	"github.com/Antonio-217/controle-financeiro/internal/testutil"
	"github.com/Antonio-217/controle-financeiro/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Hub    *realtime.Hub
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)

	// Services
	userService := services.NewUserService(db)
	subcategoryService := services.NewSubcategoryService(db)
	auditService := services.NewAuditService(db)
	dashboardService := services.NewDashboardService(db, 3)

	hub := realtime.NewHub(dashboardService, realtime.DefaultFanOut)
	t.Cleanup(hub.Close)

	transactionService := services.NewTransactionService(db, hub)
	savingsBoxService := services.NewSavingsBoxService(db, hub)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(subcategoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	savingsBoxHandler := handlers.NewSavingsBoxHandler(savingsBoxService, auditService)
	liveHandler := handlers.NewLiveHandler(hub, "*")

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.GetDashboard)
	protected.GET("/live", liveHandler.Live)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	boxes := protected.Group("/savings-boxes")
	boxes.GET("", savingsBoxHandler.ListBoxes)
	boxes.POST("", savingsBoxHandler.CreateBox)
	boxes.GET("/:id", savingsBoxHandler.GetBox)
	boxes.DELETE("/:id", savingsBoxHandler.DeleteBox)
	boxes.POST("/:id/deposit", savingsBoxHandler.Deposit)
	boxes.POST("/:id/withdraw", savingsBoxHandler.Withdraw)
	boxes.GET("/:id/movements", savingsBoxHandler.ListMovements)

	return &testApp{DB: db, Hub: hub, Router: router}
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

// mustStatus fails the test when rec does not carry the expected status.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
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

// object returns result[key] as a JSON object.
func object(t *testing.T, result map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	v, ok := result[key].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object at %q, got %v", key, result[key])
	}
	return v
}

// assertAmount compares a decimal rendered as a JSON string or number.
func assertAmount(t *testing.T, got interface{}, want string) {
	t.Helper()
	d, err := decimal.NewFromString(fmt.Sprint(got))
	if err != nil {
		t.Fatalf("value %v is not a decimal: %v", got, err)
	}
	if !d.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s, got %s", want, d)
	}
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return object(t, parseJSON(t, rec), "error")["code"].(string)
}

// registerUser registers a new user and returns the access token, refresh token and group ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, groupID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Ana","last_name":"Souza"}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/register", body, "")
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := object(t, result, "user")
	return result["access_token"].(string), result["refresh_token"].(string), user["group_id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createTransaction posts body and returns the created transaction's ID.
func (app *testApp) createTransaction(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/v1/transactions", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return object(t, parseJSON(t, rec), "transaction")["id"].(string)
}
